package rpc

import (
	"fmt"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// ParseID parses a uuid request field, reporting a bad value as InvalidArgument.
func ParseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid %s: %w", field, err))
	}
	return id, nil
}
