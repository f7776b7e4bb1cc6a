package fake

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// CheckLog returns a logger that records its entries and a function that
// verifies an entry with the exact message has been logged.
func CheckLog(msg string) (zerolog.Logger, func(t *testing.T)) {
	buffer := new(bytes.Buffer)

	check := func(t *testing.T) {
		messages := LoggedMessages(t, buffer)
		require.Contains(t, messages, msg)
	}

	return zerolog.New(buffer).Level(zerolog.DebugLevel), check
}

// LoggedMessages returns the messages of the JSON entries written to the
// buffer by a zerolog logger, in order.
func LoggedMessages(t *testing.T, buffer *bytes.Buffer) []string {
	var messages []string

	scanner := bufio.NewScanner(bytes.NewReader(buffer.Bytes()))
	for scanner.Scan() {
		entry := make(map[string]interface{})

		err := json.Unmarshal(scanner.Bytes(), &entry)
		require.NoError(t, err, "invalid log entry %q", scanner.Text())

		msg, _ := entry[zerolog.MessageFieldName].(string)
		messages = append(messages, msg)
	}

	require.NoError(t, scanner.Err())

	return messages
}
