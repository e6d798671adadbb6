// Package callback encodes and decodes inline-button callback data.
//
// The wire grammar is flat underscore-joined tokens (e.g. "interval_6",
// "confirm_remove_group_-100123"). Parse maps them onto a closed command
// enum; anything outside the grammar is rejected with ErrUnknownToken so a
// stale keyboard from an old bot version cannot trigger arbitrary handlers.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownToken = errors.New("callback: unknown token")

type Kind int

const (
	KindInvalid Kind = iota
	KindSendCustom
	KindSendDefault
	KindSetDefaultMessage
	KindSetInterval
	KindInterval
	KindStartTime
	KindGroupInfo
	KindRemoveGroup
	KindConfirmRemoveGroup
	KindLogoutConfirm
	KindLogoutCancel
	KindBackToGroups
)

// Command is a parsed callback. Exactly the argument field matching Kind is
// meaningful; the rest are zero.
type Command struct {
	Kind     Kind
	Interval int   // KindInterval: hours between sends
	Hour     int   // KindStartTime: hour of day, 0..23
	GroupID  int64 // KindGroupInfo / KindRemoveGroup / KindConfirmRemoveGroup
}

const (
	tokenSendCustom        = "send_custom"
	tokenSendDefault       = "send_default"
	tokenSetDefaultMessage = "set_default_message"
	tokenSetInterval       = "set_interval"
	tokenLogoutConfirm     = "logout_confirm"
	tokenLogoutCancel      = "logout_cancel"
	tokenBackToGroups      = "back_to_groups"

	prefixInterval           = "interval_"
	prefixStartTime          = "starttime_"
	prefixGroupInfo          = "group_info_"
	prefixRemoveGroup        = "remove_group_"
	prefixConfirmRemoveGroup = "confirm_remove_group_"
)

// Builders. Keyboards must only ever carry data produced here so that
// Parse(Build(x)) round-trips by construction.

func SendCustom() string        { return tokenSendCustom }
func SendDefault() string       { return tokenSendDefault }
func SetDefaultMessage() string { return tokenSetDefaultMessage }
func SetInterval() string       { return tokenSetInterval }
func LogoutConfirm() string     { return tokenLogoutConfirm }
func LogoutCancel() string      { return tokenLogoutCancel }
func BackToGroups() string      { return tokenBackToGroups }

func Interval(hours int) string { return prefixInterval + strconv.Itoa(hours) }
func StartTime(hour int) string { return prefixStartTime + strconv.Itoa(hour) }

func GroupInfo(id int64) string   { return prefixGroupInfo + strconv.FormatInt(id, 10) }
func RemoveGroup(id int64) string { return prefixRemoveGroup + strconv.FormatInt(id, 10) }
func ConfirmRemoveGroup(id int64) string {
	return prefixConfirmRemoveGroup + strconv.FormatInt(id, 10)
}

// Parse decodes raw callback data.
//
// confirm_remove_group_ must be checked before remove_group_: the former is
// a strict prefix extension of the latter.
func Parse(raw string) (Command, error) {
	switch raw {
	case tokenSendCustom:
		return Command{Kind: KindSendCustom}, nil
	case tokenSendDefault:
		return Command{Kind: KindSendDefault}, nil
	case tokenSetDefaultMessage:
		return Command{Kind: KindSetDefaultMessage}, nil
	case tokenSetInterval:
		return Command{Kind: KindSetInterval}, nil
	case tokenLogoutConfirm:
		return Command{Kind: KindLogoutConfirm}, nil
	case tokenLogoutCancel:
		return Command{Kind: KindLogoutCancel}, nil
	case tokenBackToGroups:
		return Command{Kind: KindBackToGroups}, nil
	}

	switch {
	case strings.HasPrefix(raw, prefixConfirmRemoveGroup):
		id, err := parseID(raw, prefixConfirmRemoveGroup)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindConfirmRemoveGroup, GroupID: id}, nil

	case strings.HasPrefix(raw, prefixRemoveGroup):
		id, err := parseID(raw, prefixRemoveGroup)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindRemoveGroup, GroupID: id}, nil

	case strings.HasPrefix(raw, prefixGroupInfo):
		id, err := parseID(raw, prefixGroupInfo)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindGroupInfo, GroupID: id}, nil

	case strings.HasPrefix(raw, prefixInterval):
		n, err := strconv.Atoi(raw[len(prefixInterval):])
		if err != nil || n <= 0 {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownToken, raw)
		}
		return Command{Kind: KindInterval, Interval: n}, nil

	case strings.HasPrefix(raw, prefixStartTime):
		h, err := strconv.Atoi(raw[len(prefixStartTime):])
		if err != nil || h < 0 || h > 23 {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownToken, raw)
		}
		return Command{Kind: KindStartTime, Hour: h}, nil
	}

	return Command{}, fmt.Errorf("%w: %q", ErrUnknownToken, raw)
}

func parseID(raw, prefix string) (int64, error) {
	id, err := strconv.ParseInt(raw[len(prefix):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownToken, raw)
	}
	return id, nil
}
