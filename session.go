package cookiejwt

import "maps"

// Data is the session payload: string keys to JSON-serializable values.
// Values read back from a cookie have gone through JSON, so numbers are
// float64 and nested objects are map[string]any.
type Data map[string]any

const flashPrefix = "__flash_"
const flashSuffix = "__"

func flashKey(name string) string {
	return flashPrefix + name + flashSuffix
}

// Session pairs session data with an identifier.
//
// A Session is a request-scoped value: it is not safe for concurrent use.
// The identifier is derived from the token the session was loaded from and is
// empty for fresh sessions.
type Session struct {
	id   string
	data Data
}

// NewSession returns a session over a copy of data.
func NewSession(data Data, id string) *Session {
	out := make(Data, len(data))
	maps.Copy(out, data)
	return &Session{id: id, data: out}
}

// ID returns the derived identifier. See [IDStrategy].
func (s *Session) ID() string {
	return s.id
}

// Data returns a shallow copy of the session data, flash entries included.
func (s *Session) Data() Data {
	out := make(Data, len(s.data))
	maps.Copy(out, s.data)
	return out
}

// Get returns the value stored under key. A flashed value is returned once
// and removed.
func (s *Session) Get(key string) (any, bool) {
	if v, ok := s.data[key]; ok {
		return v, true
	}
	fk := flashKey(key)
	if v, ok := s.data[fk]; ok {
		delete(s.data, fk)
		return v, true
	}
	return nil, false
}

// Has reports whether key is set, as a regular or flashed value.
func (s *Session) Has(key string) bool {
	if _, ok := s.data[key]; ok {
		return true
	}
	_, ok := s.data[flashKey(key)]
	return ok
}

// Set stores value under key.
func (s *Session) Set(key string, value any) {
	s.data[key] = value
}

// Flash stores value under key until the next Get of that key.
func (s *Session) Flash(key string, value any) {
	s.data[flashKey(key)] = value
}

// Unset removes key, flashed or not.
func (s *Session) Unset(key string) {
	delete(s.data, key)
	delete(s.data, flashKey(key))
}

// Len returns the number of stored entries, flash entries included.
func (s *Session) Len() int {
	return len(s.data)
}
