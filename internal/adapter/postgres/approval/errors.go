package approval

import (
	"fmt"

	postgres "github.com/mheller/gamekeeper/internal/adapter/postgres"
)

func mapError(err error, guildID int64, actorID string) error {
	return postgres.MapError(err, "approval", fmt.Sprintf("guild %d actor %s", guildID, actorID))
}
