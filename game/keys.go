package game

// Store key and topic layout. Assignment pointers carry the room TTL, so an
// expired room takes its assignments down with it.

const waitingPoolKey = "waiting_users"

func assignmentKey(username string) string {
	return "assigned_room:" + username
}

func roomTopic(roomId string) string {
	return "room_channel:" + roomId
}

func userTopic(username string) string {
	return "user_channel:" + username
}
