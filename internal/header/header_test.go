package header

import "testing"

func TestNormalizeVariants(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Impressions", "impressions"},
		{"  Watch_Time Sec ", "watchtimesec"},
		{"post_url", "posturl"},
		{"表示回数", "表示回数"},
		{"Ｉｍｐｒｅｓｓｉｏｎｓ", "impressions"}, // full-width latin
		{"いいね　数", "いいね数"},             // ideographic space
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Impressions", "表示回数", "Ｗａｔｃｈ＿Ｔｉｍｅ", "post url", "いいね", "", "  _ _  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeWidthInsensitive(t *testing.T) {
	if Normalize("ＵＲＬ") != Normalize("url") {
		t.Error("full-width and half-width URL should normalize equal")
	}
	if Normalize("ｲｲﾈ") != Normalize("イイネ") {
		t.Error("half-width katakana should fold to full-width")
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"Post_ID", "投稿 URL"})
	if got[0] != "postid" || got[1] != "投稿url" {
		t.Errorf("NormalizeAll = %v", got)
	}
}
