package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type AlertID = uuid.UUID
type TokenID = uuid.UUID
