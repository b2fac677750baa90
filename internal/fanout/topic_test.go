package fanout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTopic_Valid(t *testing.T) {
	topic, err := ParseTopic("room:42")
	require.NoError(t, err)
	require.Equal(t, RoomTopic(42), topic)

	topic, err = ParseTopic("user:7")
	require.NoError(t, err)
	require.Equal(t, UserTopic(7), topic)

	topic, err = ParseTopic("room:0")
	require.NoError(t, err)
	require.Equal(t, RoomTopic(0), topic)
}

func TestParseTopic_Invalid(t *testing.T) {
	cases := []string{
		"",
		"not-a-topic",
		"room:",
		"room:abc",
		"room:-1",
		"room:+1",
		"room:01",
		"room: 1",
		"user:1:2",
		"channel:5",
		"ROOM:5",
	}
	for _, c := range cases {
		_, err := ParseTopic(c)
		require.ErrorIs(t, err, ErrInvalidTopic, "input %q", c)
	}
}

func TestTopic_StringRoundTrip(t *testing.T) {
	for _, topic := range []Topic{RoomTopic(42), UserTopic(7)} {
		parsed, err := ParseTopic(topic.String())
		require.NoError(t, err)
		require.Equal(t, topic, parsed)
	}
}
