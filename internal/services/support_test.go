package services

import (
	"strings"
	"testing"
)

func TestBuildSupportMessage(t *testing.T) {
	link := BuildSupportMessage("8801700000000", "BNB999")

	if !strings.HasPrefix(link, "https://wa.me/8801700000000?text=") {
		t.Errorf("unexpected link prefix: %s", link)
	}
	if !strings.Contains(link, "BNB999") {
		t.Errorf("link does not embed the failed transaction id: %s", link)
	}
	if strings.Contains(link, " ") {
		t.Errorf("link is not query-escaped: %s", link)
	}

	// Same failed id must always reproduce an identical link
	again := BuildSupportMessage("8801700000000", "BNB999")
	if link != again {
		t.Errorf("support link is not deterministic: %s vs %s", link, again)
	}
}
