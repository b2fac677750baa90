package fanout

import (
	"fmt"
	"strconv"
	"strings"
)

// Principal is an authenticated user identity. User ids are integers
// in the upstream schema.
type Principal int64

type TopicKind int

const (
	// TopicRoom is an explicit group topic; principals join and leave it.
	TopicRoom TopicKind = iota
	// TopicUser is the implicit per-principal channel; every connection
	// of that principal is a member without any join call.
	TopicUser
)

// Topic identifies a delivery scope. The wire form is "room:<id>" or
// "user:<id>"; anything else is rejected.
type Topic struct {
	Kind TopicKind
	ID   int64
}

func RoomTopic(id int64) Topic { return Topic{Kind: TopicRoom, ID: id} }
func UserTopic(id int64) Topic { return Topic{Kind: TopicUser, ID: id} }

func (t Topic) String() string {
	prefix := "room"
	if t.Kind == TopicUser {
		prefix = "user"
	}
	return prefix + ":" + strconv.FormatInt(t.ID, 10)
}

// ParseTopic parses the wire form strictly: the id must be a plain
// non-negative decimal integer (no sign, no leading zeros, no spaces).
func ParseTopic(s string) (Topic, error) {
	prefix, raw, found := strings.Cut(s, ":")
	if !found {
		return Topic{}, fmt.Errorf("%w: %q", ErrInvalidTopic, s)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 || raw != strconv.FormatInt(id, 10) {
		return Topic{}, fmt.Errorf("%w: %q", ErrInvalidTopic, s)
	}

	switch prefix {
	case "room":
		return RoomTopic(id), nil
	case "user":
		return UserTopic(id), nil
	}
	return Topic{}, fmt.Errorf("%w: %q", ErrInvalidTopic, s)
}
