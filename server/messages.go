package server

// Request and response messages of the ScriptService. Field names follow
// the lowerCamelCase JSON convention of Connect's JSON encoding.

// Diagnostic is one compile error.
type Diagnostic struct {
	Script  string `json:"script,omitempty"` // NPC slot or "Item"; empty for single scripts
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type CompileRequest struct {
	Source string `json:"source"`
}

type CompileResponse struct {
	Success     bool         `json:"success"`
	Packed      string       `json:"packed,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

type DecompileRequest struct {
	Packed string `json:"packed"`
	// Annotate appends parameter names and resolved references to each
	// command line.
	Annotate bool `json:"annotate"`
}

type DecompileResponse struct {
	Source string `json:"source"`
}

type ValidateRequest struct {
	Packed string `json:"packed"`
}

type ValidateResponse struct {
	Valid       bool         `json:"valid"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

type EnumerationRequest struct {
	// Name is a gamedata table name; empty lists the table names.
	Name string `json:"name"`
}

type EnumerationResponse struct {
	Name    string   `json:"name,omitempty"`
	Entries []string `json:"entries"`
}

type LoadNPCRequest struct {
	UID string `json:"uid"`
}

// NPCScripts is an NPC with its scripts in source form, keyed by slot name.
type NPCScripts struct {
	UID     string            `json:"uid"`
	NameUID string            `json:"nameUid,omitempty"`
	Scripts map[string]string `json:"scripts"`
}

type SaveNPCResponse struct {
	Saved       bool         `json:"saved"`
	NPC         *NPCScripts  `json:"npc,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

type LoadItemRequest struct {
	EntityID string `json:"entityId"`
}

type ItemScript struct {
	UID      string `json:"uid,omitempty"`
	EntityID string `json:"entityId"`
	Source   string `json:"source"`
}

type SaveItemResponse struct {
	Saved       bool         `json:"saved"`
	Item        *ItemScript  `json:"item,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
