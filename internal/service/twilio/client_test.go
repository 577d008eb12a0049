package twilio

import "testing"

func TestParseMediaRef(t *testing.T) {
	ref := "https://api.twilio.com/2010-04-01/Accounts/ACxxxx/Messages/MMyyyy/Media/MEzzzz"

	messageSid, mediaSid, err := parseMediaRef(ref)
	if err != nil {
		t.Fatalf("parseMediaRef err: %v", err)
	}
	if messageSid != "MMyyyy" {
		t.Fatalf("unexpected message sid: %s", messageSid)
	}
	if mediaSid != "MEzzzz" {
		t.Fatalf("unexpected media sid: %s", mediaSid)
	}
}

func TestParseMediaRefMalformed(t *testing.T) {
	refs := []string{
		"",
		"not-a-url-at-all",
		"https://api.twilio.com/2010-04-01",
		"https://api.twilio.com/Accounts/AC/Calls/CA/Recordings/RE",
		"https://api.twilio.com/Messages/MM/Media/",
	}
	for _, ref := range refs {
		if _, _, err := parseMediaRef(ref); err == nil {
			t.Fatalf("expected error for %q", ref)
		}
	}
}
