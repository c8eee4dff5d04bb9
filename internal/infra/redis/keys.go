package redis

import "fmt"

const keyPrefix = "aihuman"

func playerKey(userID string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, userID)
}

func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}

func itemsKey() string {
	return fmt.Sprintf("%s:items", keyPrefix)
}

// itemsVersionKey is bumped on every insert so an in-flight cache fill can detect it.
func itemsVersionKey() string {
	return fmt.Sprintf("%s:items:version", keyPrefix)
}
