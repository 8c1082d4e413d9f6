package models

// Participant is an entity currently present in the room. The name is the
// key; there is no separate ID.
type Participant struct {
	Name string `json:"name"`
	// LastHeartbeat is the unix-nano time of the last status ping (or the
	// join itself). The reaper evicts participants whose heartbeat goes
	// stale.
	LastHeartbeat int64 `json:"last_heartbeat"`
}
