package server

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"

	"github.com/chazu/sol25/compiler"
	"github.com/chazu/sol25/compiler/wire"
	"github.com/chazu/sol25/compiler/xmldoc"
)

// CheckProcedure is the Connect procedure path of CheckService.Check.
const CheckProcedure = "/sol25.v1.CheckService/Check"

// CheckRequest asks the service to check one SOL25 source text.
type CheckRequest struct {
	Source string `json:"source"`
	Strict bool   `json:"strict,omitempty"`
}

// Diagnostic is one classified failure of a check.
type Diagnostic struct {
	Code    int    `json:"code"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// CheckResponse carries the exit classification of a check. Document and
// Fingerprint are set only when the source is admissible.
type CheckResponse struct {
	ExitCode    int          `json:"exitCode"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Document    string       `json:"document,omitempty"`
	Fingerprint string       `json:"fingerprint,omitempty"`
}

// jsonCodec lets Connect carry plain Go structs as JSON. It replaces the
// default "json" codec, which only accepts protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

// CheckService implements the CheckService Connect handler.
type CheckService struct {
	opts   compiler.Options
	indent int
}

// NewCheckService creates a CheckService. opts are the defaults that a
// request may tighten; indent is applied to returned documents.
func NewCheckService(opts compiler.Options, indent int) *CheckService {
	return &CheckService{opts: opts, indent: indent}
}

// Check runs the front end over the request source. Inadmissible programs
// are not RPC failures: their classification is reported in the response.
func (s *CheckService) Check(
	ctx context.Context,
	req *connect.Request[CheckRequest],
) (*connect.Response[CheckResponse], error) {
	opts := s.opts
	if req.Msg.Strict {
		opts.StrictClasses = true
	}

	result, err := compiler.Check(req.Msg.Source, opts)
	if err != nil {
		resp := &CheckResponse{ExitCode: int(compiler.ExitCodeOf(err))}
		for _, e := range compiler.Diagnostics(err) {
			resp.Diagnostics = append(resp.Diagnostics, Diagnostic{
				Code:    int(e.Code),
				Line:    e.Pos.Line,
				Column:  e.Pos.Column,
				Message: e.Msg,
			})
		}
		log.Debugf("check rejected source: exit %d", resp.ExitCode)
		return connect.NewResponse(resp), nil
	}

	var buf bytes.Buffer
	if err := xmldoc.Write(&buf, result.Program, result.Description, s.indent); err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("write document: %w", err))
	}
	sum, err := wire.Fingerprint(result.Program)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("fingerprint: %w", err))
	}

	return connect.NewResponse(&CheckResponse{
		ExitCode:    int(compiler.ExitOK),
		Document:    buf.String(),
		Fingerprint: hex.EncodeToString(sum[:]),
	}), nil
}

// NewCheckServiceHandler returns the procedure path and HTTP handler that
// serve svc.
func NewCheckServiceHandler(svc *CheckService, opts ...connect.HandlerOption) (string, *connect.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	return CheckProcedure, connect.NewUnaryHandler(CheckProcedure, svc.Check, opts...)
}

// NewCheckClient returns a client for the CheckService served at baseURL.
func NewCheckClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *connect.Client[CheckRequest, CheckResponse] {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return connect.NewClient[CheckRequest, CheckResponse](httpClient, baseURL+CheckProcedure, opts...)
}
