package retrieval

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadCursor indicates a pagination cursor that was not produced by this
// service.
var ErrBadCursor = errors.New("invalid cursor")

const cursorPrefix = "o:"

// EncodeCursor packs a row offset into an opaque page token.
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// DecodeCursor unpacks a page token. The empty cursor means offset zero.
func DecodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	payload, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, ErrBadCursor
	}
	offset, err := strconv.Atoi(payload)
	if err != nil || offset < 0 {
		return 0, ErrBadCursor
	}
	return offset, nil
}
