package dto

// StaffAddRequest puts a player on the stafflist.
type StaffAddRequest struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// StaffEntry is one roster row.
type StaffEntry struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}
