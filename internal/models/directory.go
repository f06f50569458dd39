package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Directory maps user IDs to users. It is the whole persisted store.
//
// JSON form is an object keyed by decimal IDs, written in ascending numeric order.
type Directory map[int]User

// IDs returns the user IDs in ascending order.
func (d Directory) IDs() []int {
	ids := make([]int, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NextID returns max(ID)+1, or 1 for an empty directory.
func (d Directory) NextID() int {
	next := 1
	for id := range d {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// FindIdentity returns the user with exactly this name and email, if any.
func (d Directory) FindIdentity(name, email string) (User, bool) {
	for _, id := range d.IDs() {
		if d[id].SameIdentity(name, email) {
			return d[id], true
		}
	}
	return User{}, false
}

// Renumber relabels every user to 1..N keeping their ascending-ID order.
func (d Directory) Renumber() Directory {
	out := make(Directory, len(d))
	for i, id := range d.IDs() {
		u := d[id]
		u.ID = i + 1
		out[u.ID] = u
	}
	return out
}

func (d Directory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range d.IDs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(id)))
		buf.WriteByte(':')

		user, err := json.Marshal(d[id])
		if err != nil {
			return nil, fmt.Errorf("failed to encode user %d: %w", id, err)
		}
		buf.Write(user)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Directory) UnmarshalJSON(data []byte) error {
	var raw map[string]User
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Directory, len(raw))
	for key, u := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id < 1 {
			return fmt.Errorf("invalid user key %q", key)
		}
		u.ID = id
		out[id] = u
	}
	*d = out
	return nil
}
