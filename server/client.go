package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// ScriptClient calls a remote ScriptService.
type ScriptClient struct {
	compile     *connect.Client[CompileRequest, CompileResponse]
	decompile   *connect.Client[DecompileRequest, DecompileResponse]
	validate    *connect.Client[ValidateRequest, ValidateResponse]
	enumeration *connect.Client[EnumerationRequest, EnumerationResponse]
	loadNPC     *connect.Client[LoadNPCRequest, NPCScripts]
	saveNPC     *connect.Client[NPCScripts, SaveNPCResponse]
	loadItem    *connect.Client[LoadItemRequest, ItemScript]
	saveItem    *connect.Client[ItemScript, SaveItemResponse]
}

// NewScriptClient creates a client for the ScriptService served at
// baseURL, e.g. "http://localhost:4567".
func NewScriptClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ScriptClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &ScriptClient{
		compile:     connect.NewClient[CompileRequest, CompileResponse](httpClient, baseURL+CompileProcedure, opts...),
		decompile:   connect.NewClient[DecompileRequest, DecompileResponse](httpClient, baseURL+DecompileProcedure, opts...),
		validate:    connect.NewClient[ValidateRequest, ValidateResponse](httpClient, baseURL+ValidateProcedure, opts...),
		enumeration: connect.NewClient[EnumerationRequest, EnumerationResponse](httpClient, baseURL+EnumerationProcedure, opts...),
		loadNPC:     connect.NewClient[LoadNPCRequest, NPCScripts](httpClient, baseURL+LoadNPCProcedure, opts...),
		saveNPC:     connect.NewClient[NPCScripts, SaveNPCResponse](httpClient, baseURL+SaveNPCProcedure, opts...),
		loadItem:    connect.NewClient[LoadItemRequest, ItemScript](httpClient, baseURL+LoadItemProcedure, opts...),
		saveItem:    connect.NewClient[ItemScript, SaveItemResponse](httpClient, baseURL+SaveItemProcedure, opts...),
	}
}

func callUnary[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], req *Req) (*Res, error) {
	resp, err := c.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *ScriptClient) Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error) {
	return callUnary(ctx, c.compile, req)
}

func (c *ScriptClient) Decompile(ctx context.Context, req *DecompileRequest) (*DecompileResponse, error) {
	return callUnary(ctx, c.decompile, req)
}

func (c *ScriptClient) Validate(ctx context.Context, req *ValidateRequest) (*ValidateResponse, error) {
	return callUnary(ctx, c.validate, req)
}

func (c *ScriptClient) Enumeration(ctx context.Context, req *EnumerationRequest) (*EnumerationResponse, error) {
	return callUnary(ctx, c.enumeration, req)
}

func (c *ScriptClient) LoadNPC(ctx context.Context, req *LoadNPCRequest) (*NPCScripts, error) {
	return callUnary(ctx, c.loadNPC, req)
}

func (c *ScriptClient) SaveNPC(ctx context.Context, req *NPCScripts) (*SaveNPCResponse, error) {
	return callUnary(ctx, c.saveNPC, req)
}

func (c *ScriptClient) LoadItem(ctx context.Context, req *LoadItemRequest) (*ItemScript, error) {
	return callUnary(ctx, c.loadItem, req)
}

func (c *ScriptClient) SaveItem(ctx context.Context, req *ItemScript) (*SaveItemResponse, error) {
	return callUnary(ctx, c.saveItem, req)
}
