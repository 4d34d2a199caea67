package util

import (
	"time"
)

func NewBool(v bool) *bool {
	return &v
}

func NewDuration(v time.Duration) *time.Duration {
	return &v
}

func NewString(v string) *string {
	return &v
}

func NewUint(v uint) *uint {
	return &v
}
