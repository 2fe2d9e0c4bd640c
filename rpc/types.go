package rpc

// The Args/Reply pairs below mirror spec.md §6's "Wire protocol (RPC
// service surface)" exactly, one struct pair per RPC. net/rpc requires
// each exported method to take exactly one argument and one reply
// pointer, both of which must be encodable by encoding/gob.

// StoragerAddArgs/StoragerAddReply: Storager.Add(keyword, fid) -> {
// proof, root_hash }.
type StoragerAddArgs struct {
	Keyword string
	Fid     string
}

type StoragerAddReply struct {
	Proof    []byte
	RootHash []byte
}

// StoragerQueryArgs/StoragerQueryReply: Storager.Query(keyword) -> {
// fids, proof }.
type StoragerQueryArgs struct {
	Keyword string
}

type StoragerQueryReply struct {
	Fids  []string
	Proof []byte
}

// StoragerDeleteArgs/StoragerDeleteReply: Storager.Delete(keyword, fid)
// -> { proof, root_hash }.
type StoragerDeleteArgs struct {
	Keyword string
	Fid     string
}

type StoragerDeleteReply struct {
	Proof    []byte
	RootHash []byte
}

// ManagerAddArgs/ManagerReply: Manager.Add(fid, keywords) -> { success,
// message }. ManagerReply is shared by Add/Delete/Update, which all
// report the same shape.
type ManagerAddArgs struct {
	Fid      string
	Keywords []string
}

type ManagerReply struct {
	Success bool
	Message string
}

// ManagerDeleteArgs: Manager.Delete(fid, keywords) -> ManagerReply.
type ManagerDeleteArgs struct {
	Fid      string
	Keywords []string
}

// ManagerUpdateArgs: Manager.Update(fid, old_keywords, new_keywords) ->
// ManagerReply.
type ManagerUpdateArgs struct {
	Fid         string
	OldKeywords []string
	NewKeywords []string
}

// ManagerQueryArgs: Manager.Query({ Keyword(string) | BooleanFunction(string) })
// -> ManagerQueryReply. Exactly one of Keyword/BooleanFunction is set,
// mirroring the reference's tagged query_request oneof.
type ManagerQueryArgs struct {
	Keyword         string
	BooleanFunction string
}

type ManagerQueryReply struct {
	Fids     []string
	Proof    []byte
	RootHash []byte
	Verified bool
}
