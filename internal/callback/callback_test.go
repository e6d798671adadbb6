package callback

import (
	"errors"
	"testing"
)

func TestParseFixedTokens(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		kind Kind
	}{
		{SendCustom(), KindSendCustom},
		{SendDefault(), KindSendDefault},
		{SetDefaultMessage(), KindSetDefaultMessage},
		{SetInterval(), KindSetInterval},
		{LogoutConfirm(), KindLogoutConfirm},
		{LogoutCancel(), KindLogoutCancel},
		{BackToGroups(), KindBackToGroups},
	}
	for _, tc := range cases {
		cmd, err := Parse(tc.raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.raw, err)
		}
		if cmd.Kind != tc.kind {
			t.Errorf("Parse(%q) kind = %v, want %v", tc.raw, cmd.Kind, tc.kind)
		}
	}
}

func TestParseArguments(t *testing.T) {
	t.Parallel()

	cmd, err := Parse(Interval(6))
	if err != nil || cmd.Kind != KindInterval || cmd.Interval != 6 {
		t.Fatalf("interval: got %+v, %v", cmd, err)
	}

	cmd, err = Parse(StartTime(0))
	if err != nil || cmd.Kind != KindStartTime || cmd.Hour != 0 {
		t.Fatalf("starttime: got %+v, %v", cmd, err)
	}

	cmd, err = Parse(GroupInfo(-1001234567890))
	if err != nil || cmd.Kind != KindGroupInfo || cmd.GroupID != -1001234567890 {
		t.Fatalf("group_info: got %+v, %v", cmd, err)
	}

	cmd, err = Parse(RemoveGroup(-42))
	if err != nil || cmd.Kind != KindRemoveGroup || cmd.GroupID != -42 {
		t.Fatalf("remove_group: got %+v, %v", cmd, err)
	}
}

// confirm_remove_group_ extends remove_group_ as a string; make sure the
// longer prefix wins.
func TestParseConfirmRemoveBeforeRemove(t *testing.T) {
	t.Parallel()

	cmd, err := Parse(ConfirmRemoveGroup(-500))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != KindConfirmRemoveGroup {
		t.Fatalf("kind = %v, want KindConfirmRemoveGroup", cmd.Kind)
	}
	if cmd.GroupID != -500 {
		t.Fatalf("group id = %d, want -500", cmd.GroupID)
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	t.Parallel()

	bad := []string{
		"",
		"logout",
		"interval_",
		"interval_x",
		"interval_0",
		"interval_-3",
		"starttime_24",
		"starttime_-1",
		"group_info_abc",
		"remove_group_",
		"confirm_remove_group_?",
		"send_custom_extra",
	}
	for _, raw := range bad {
		if _, err := Parse(raw); !errors.Is(err, ErrUnknownToken) {
			t.Errorf("Parse(%q) err = %v, want ErrUnknownToken", raw, err)
		}
	}
}
