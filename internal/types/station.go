package types

// Station is immutable reference data: a fixed transit stop on the line,
// identified by a line-prefixed code such as "N8" or "E4".
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
