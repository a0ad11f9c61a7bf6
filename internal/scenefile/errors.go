package scenefile

import "errors"

var (
	ErrAmbiguousValue  = errors.New("value has both constant and samples")
	ErrDuplicateEntity = errors.New("duplicate entity id")
	ErrUnknownParent   = errors.New("unknown parent entity")
	ErrInvalidSchedule = errors.New("invalid appear/remove schedule")
	ErrInvalidInterval = errors.New("availability interval ends before it starts")
	ErrZeroQuaternion  = errors.New("orientation quaternion is zero")
)
