package server

import "strings"

// Room id alphabet: lowercase alphanumerics without the look-alikes
// (0/o, 1/l/i) so ids survive being read out loud.
const roomIDAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// roomIDLength is short on purpose; ids are join codes, not UUIDs
const roomIDLength = 6

// RandSource is the slice of rand functionality room id generation needs,
// kept as an interface so tests can inject a deterministic source.
type RandSource interface {
	IntN(n int) int
}

// NewRoomID generates a short random room token. Lookups lowercase
// their input, so the token is effectively case-insensitive.
func NewRoomID(rng RandSource) string {
	var b strings.Builder
	b.Grow(roomIDLength)
	for i := 0; i < roomIDLength; i++ {
		b.WriteByte(roomIDAlphabet[rng.IntN(len(roomIDAlphabet))])
	}
	return b.String()
}

// NormalizeRoomID maps a client-supplied room id to its canonical form
func NormalizeRoomID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// playerIDLength only needs to avoid collisions within one room
const playerIDLength = 10

// newPlayerID generates a player id from the same alphabet as room ids
func newPlayerID(rng RandSource) string {
	var b strings.Builder
	b.Grow(playerIDLength + 2)
	b.WriteString("p-")
	for i := 0; i < playerIDLength; i++ {
		b.WriteByte(roomIDAlphabet[rng.IntN(len(roomIDAlphabet))])
	}
	return b.String()
}
