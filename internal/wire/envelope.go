// Package wire defines the JSON envelopes exchanged with the host and the
// translation between their PascalCase wire form and the internal types.
// Nothing outside this package sees wire field names.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is a command as the rest of the program sees it.
type Request struct {
	ID      string
	Command string
	Params  json.RawMessage
}

// Response is a reply as the rest of the program sees it.
type Response struct {
	ID      string
	Success bool
	Data    json.RawMessage
	Error   string
}

// commandEnvelope is the wire form of a Request.
type commandEnvelope struct {
	CommandName string          `json:"CommandName"`
	Parameters  json.RawMessage `json:"Parameters"`
	RequestID   string          `json:"RequestId"`
}

// responseEnvelope is the wire form of a Response.
type responseEnvelope struct {
	Success   bool            `json:"Success"`
	Data      json.RawMessage `json:"Data"`
	Error     string          `json:"Error,omitempty"`
	RequestID string          `json:"RequestId"`
}

var emptyObject = json.RawMessage(`{}`)

// EncodeRequest marshals req as a command envelope. Missing parameters are
// sent as an empty object.
func EncodeRequest(req Request) ([]byte, error) {
	params := req.Params
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		params = emptyObject
	}
	return json.Marshal(commandEnvelope{
		CommandName: req.Command,
		Parameters:  params,
		RequestID:   req.ID,
	})
}

// DecodeRequest parses a command envelope.
func DecodeRequest(data []byte) (Request, error) {
	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Request{}, fmt.Errorf("decoding command envelope: %w", err)
	}
	if env.CommandName == "" {
		return Request{ID: env.RequestID}, fmt.Errorf("command envelope without CommandName")
	}
	params := env.Parameters
	if len(params) == 0 || bytes.Equal(params, []byte("null")) {
		params = emptyObject
	}
	return Request{ID: env.RequestID, Command: env.CommandName, Params: params}, nil
}

// EncodeResponse marshals resp as a response envelope. Data is sent as null
// when empty.
func EncodeResponse(resp Response) ([]byte, error) {
	data := resp.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return json.Marshal(responseEnvelope{
		Success:   resp.Success,
		Data:      data,
		Error:     resp.Error,
		RequestID: resp.ID,
	})
}

// DecodeResponse parses a response envelope.
func DecodeResponse(data []byte) (Response, error) {
	var env responseEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Response{}, fmt.Errorf("decoding response envelope: %w", err)
	}
	resp := Response{
		ID:      env.RequestID,
		Success: env.Success,
		Error:   env.Error,
	}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		resp.Data = env.Data
	}
	return resp, nil
}

// Failure builds an unsuccessful response for id.
func Failure(id string, err error) Response {
	return Response{ID: id, Success: false, Error: err.Error()}
}

// Success builds a successful response carrying v marshaled as JSON.
func Success(id string, v any) (Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Response{}, fmt.Errorf("encoding result: %w", err)
	}
	return Response{ID: id, Success: true, Data: data}, nil
}
