package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilMessages is returned by NewMessages when no slice is supplied at
// all. Passing an explicit empty slice is valid and yields an empty
// conversation; passing nil is a usage error.
var ErrNilMessages = errors.New("schema: messages slice is required (pass []Message{} for an empty conversation)")

// ValidationError 描述一条不合法的消息。Index 为消息在会话中的位置，
// 单独校验时为 -1。
type ValidationError struct {
	Index  int
	Role   Role
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("schema: invalid message")
	if e.Index >= 0 {
		fmt.Fprintf(&b, "[%d]", e.Index)
	}
	if e.Role != "" {
		fmt.Fprintf(&b, " (role %q)", e.Role)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// AsValidationError 判断错误是否为 ValidationError
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
