package bot

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// dumpUpdate logs a serialized snapshot of every inbound update. Observational
// only, it cannot alter routing outcomes.
func (b *Bot) dumpUpdate(update tgbotapi.Update) {
	b.logger.Info("Incoming update", StringField("update", serializeUpdate(update)))
}

// serializeUpdate renders the update as JSON, falling back to the plain
// string form when marshalling fails.
func serializeUpdate(update tgbotapi.Update) string {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Sprintf("%+v", update)
	}
	return string(data)
}
