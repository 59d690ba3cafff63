package offer

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusAccepted) {
		t.Fatal("expected pending -> accepted to be allowed")
	}
	if !CanTransition(StatusPending, StatusRejected) {
		t.Fatal("expected pending -> rejected to be allowed")
	}
	if !CanTransition(StatusPending, StatusWithdrawn) {
		t.Fatal("expected pending -> withdrawn to be allowed")
	}
	if !CanTransition(StatusAccepted, StatusCompleted) {
		t.Fatal("expected accepted -> completed to be allowed")
	}

	if CanTransition(StatusPending, StatusCompleted) {
		t.Fatal("unexpected transition pending -> completed allowed")
	}
	if CanTransition(StatusAccepted, StatusWithdrawn) {
		t.Fatal("unexpected transition accepted -> withdrawn allowed")
	}
	if CanTransition(StatusRejected, StatusAccepted) {
		t.Fatal("unexpected transition rejected -> accepted allowed")
	}
	if CanTransition(StatusWithdrawn, StatusPending) {
		t.Fatal("unexpected transition withdrawn -> pending allowed")
	}
	if CanTransition(StatusCompleted, StatusAccepted) {
		t.Fatal("unexpected transition completed -> accepted allowed")
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn, StatusCompleted} {
		if !ValidStatus(status) {
			t.Errorf("expected %s to be a valid status", status)
		}
	}
	if ValidStatus("expired") {
		t.Error("unexpected valid status: expired")
	}
	if ValidStatus("") {
		t.Error("unexpected valid status: empty string")
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []string{StatusRejected, StatusWithdrawn, StatusCompleted} {
		if !IsTerminal(status) {
			t.Errorf("expected %s to be terminal", status)
		}
	}
	for _, status := range []string{StatusPending, StatusAccepted} {
		if IsTerminal(status) {
			t.Errorf("expected %s to be non-terminal", status)
		}
	}
}
