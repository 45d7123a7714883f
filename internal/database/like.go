package database

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains turns a user keyword into a LIKE pattern matching it anywhere.
// % and _ in the keyword match themselves.
func Contains(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}
