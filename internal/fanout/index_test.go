package fanout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndex_JoinIsIdempotent(t *testing.T) {
	idx := NewIndex()

	idx.Join(RoomTopic(42), 7)
	idx.Join(RoomTopic(42), 7)

	require.ElementsMatch(t, []Principal{7}, idx.MembersOf(RoomTopic(42)))
	require.ElementsMatch(t, []Topic{RoomTopic(42)}, idx.TopicsOf(7))
}

func TestIndex_LeaveRemovesMembership(t *testing.T) {
	idx := NewIndex()

	idx.Join(RoomTopic(42), 7)
	idx.Leave(RoomTopic(42), 7)

	require.Empty(t, idx.MembersOf(RoomTopic(42)))
	require.Empty(t, idx.TopicsOf(7))
}

func TestIndex_LeaveIsIdempotent(t *testing.T) {
	idx := NewIndex()

	idx.Leave(RoomTopic(42), 7)
	idx.Join(RoomTopic(42), 7)
	idx.Leave(RoomTopic(42), 7)
	idx.Leave(RoomTopic(42), 7)

	require.Empty(t, idx.MembersOf(RoomTopic(42)))
}

func TestIndex_TopicDisappearsWithLastMember(t *testing.T) {
	idx := NewIndex()

	idx.Join(RoomTopic(1), 7)
	idx.Join(RoomTopic(1), 8)
	idx.Leave(RoomTopic(1), 7)
	require.ElementsMatch(t, []Principal{8}, idx.MembersOf(RoomTopic(1)))

	idx.Leave(RoomTopic(1), 8)
	require.Empty(t, idx.MembersOf(RoomTopic(1)))
}

func TestIndex_TopicsOfListsOnlyExplicitJoins(t *testing.T) {
	idx := NewIndex()

	idx.Join(RoomTopic(1), 7)
	idx.Join(RoomTopic(2), 7)

	require.ElementsMatch(t, []Topic{RoomTopic(1), RoomTopic(2)}, idx.TopicsOf(7))
	require.Empty(t, idx.TopicsOf(8))
}
