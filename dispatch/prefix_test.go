package dispatch

import "testing"

func TestResolveIgnoresOtherBotsByDefault(t *testing.T) {
	_, ok := Resolve("!play song", true, false, "!", nil, nil)
	if ok {
		t.Fatal("a message from a non-designated bot must be ignored")
	}
}

func TestResolveAllowsDesignatedTestBot(t *testing.T) {
	rest, ok := Resolve("!play song", true, true, "!", nil, nil)
	if !ok || rest != "play song" {
		t.Fatalf("expected dispatch for designated test bot, got rest=%q ok=%v", rest, ok)
	}
}

func TestResolveMainPrefixMatch(t *testing.T) {
	rest, ok := Resolve("!play never gonna give you up", false, false, "!", nil, nil)
	if !ok || rest != "play never gonna give you up" {
		t.Fatalf("got rest=%q ok=%v", rest, ok)
	}
}

func TestResolveUppercaseVariantOfPrefixAccepted(t *testing.T) {
	rest, ok := Resolve("RC!play song", false, false, "rc!", nil, nil)
	if !ok || rest != "play song" {
		t.Fatalf("expected uppercase prefix variant to match, got rest=%q ok=%v", rest, ok)
	}
}

func TestResolveFallsBackToAdditionalPrefixes(t *testing.T) {
	rest, ok := Resolve("?play song", false, false, "!", []string{"?", "$"}, nil)
	if !ok || rest != "play song" {
		t.Fatalf("expected additional prefix match, got rest=%q ok=%v", rest, ok)
	}
}

func TestResolveAdditionalPrefixFirstMatchWins(t *testing.T) {
	rest, ok := Resolve("$play song", false, false, "!", []string{"?", "$"}, nil)
	if !ok || rest != "play song" {
		t.Fatalf("got rest=%q ok=%v", rest, ok)
	}
}

func TestResolveMentionDispatchesWithoutPrefix(t *testing.T) {
	rest, ok := Resolve("<@123> play song", false, false, "!", nil, []string{"<@123>", "<@!123>"})
	if !ok || rest != "play song" {
		t.Fatalf("expected mention dispatch, got rest=%q ok=%v", rest, ok)
	}
}

func TestResolveIgnoresUnrelatedMessage(t *testing.T) {
	_, ok := Resolve("just chatting", false, false, "!", []string{"?"}, []string{"<@123>"})
	if ok {
		t.Fatal("a message with no prefix/mention match must be ignored")
	}
}
