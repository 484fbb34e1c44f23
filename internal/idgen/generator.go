package idgen

// Generator produces and recognises identifiers.
type Generator interface {
	Generate() (string, error)
	Validate(id string) bool
}
