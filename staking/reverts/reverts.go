// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind string

const (
	KindUnauthorized           Kind = "Unauthorized"
	KindPoolNotFound           Kind = "PoolNotFound"
	KindStakeNotFound          Kind = "StakeNotFound"
	KindAlreadyConfigured      Kind = "AlreadyConfigured"
	KindAlreadySet             Kind = "AlreadySet"
	KindInvalidRange           Kind = "InvalidRange"
	KindInvalidDuration        Kind = "InvalidDuration"
	KindPastStart              Kind = "PastStart"
	KindZeroAmount             Kind = "ZeroAmount"
	KindBelowMinimum           Kind = "BelowMinimum"
	KindInsufficientPotBalance Kind = "InsufficientPotBalance"
	KindTooEarly               Kind = "TooEarly"
	KindAlreadyWithdrawn       Kind = "AlreadyWithdrawn"
	KindInsufficientBalance    Kind = "InsufficientBalance"
	KindInsufficientAllowance  Kind = "InsufficientAllowance"
)

var (
	ErrUnauthorized           = New(KindUnauthorized, "unauthorized")
	ErrPoolNotFound           = New(KindPoolNotFound, "pool not found")
	ErrStakeNotFound          = New(KindStakeNotFound, "stake not found")
	ErrAlreadyConfigured      = New(KindAlreadyConfigured, "staking period already configured")
	ErrAlreadySet             = New(KindAlreadySet, "already set")
	ErrInvalidRange           = New(KindInvalidRange, "end must be after start")
	ErrInvalidDuration        = New(KindInvalidDuration, "duration must be positive")
	ErrPastStart              = New(KindPastStart, "start is in the past")
	ErrZeroAmount             = New(KindZeroAmount, "amount must be positive")
	ErrBelowMinimum           = New(KindBelowMinimum, "multiplier must exceed 100")
	ErrInsufficientPotBalance = New(KindInsufficientPotBalance, "insufficient reward pot balance")
	ErrTooEarly               = New(KindTooEarly, "lock duration not elapsed")
	ErrAlreadyWithdrawn       = New(KindAlreadyWithdrawn, "stake already withdrawn")
	ErrInsufficientBalance    = New(KindInsufficientBalance, "insufficient balance")
	ErrInsufficientAllowance  = New(KindInsufficientAllowance, "insufficient allowance")
)

// ErrRevert is a control failure: the operation was rejected and nothing changed.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Is reports whether target is a revert of the same kind.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.kind == e.kind
}

// Withf returns a revert of the same kind with details appended to the message.
func (e *ErrRevert) Withf(format string, args ...any) *ErrRevert {
	return &ErrRevert{
		kind:    e.kind,
		message: e.message + ": " + fmt.Sprintf(format, args...),
	}
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert wrapped in err.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return "", false
}
