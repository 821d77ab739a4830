package settings

import "testing"

func TestDefaultDataHasSaneVolumeAndPrefix(t *testing.T) {
	data := DefaultData("my-guild")

	if data.Prefix != DefaultPrefix {
		t.Fatalf("expected default prefix %q, got %q", DefaultPrefix, data.Prefix)
	}
	if data.Volume != 1.0 || data.OldVolume != 1.0 {
		t.Fatalf("expected default volume 1.0, got volume=%v oldVolume=%v", data.Volume, data.OldVolume)
	}
	if data.GuildName != "my-guild" {
		t.Fatalf("expected guild name to be seeded, got %q", data.GuildName)
	}
	if data.IgnoredChannels == nil || data.AuthorizedUsers == nil || data.CommandACL == nil {
		t.Fatal("expected DefaultData to initialize every map field")
	}
}

func TestGuildSettingsSnapshotIsIndependentCopy(t *testing.T) {
	g := newGuildSettings("1", DefaultData("guild"))

	snap := g.Snapshot()
	snap.Prefix = "?"

	if g.Snapshot().Prefix != DefaultPrefix {
		t.Fatal("mutating a Snapshot's return value must not affect the stored settings")
	}
}

func TestGuildSettingsUpdateMarksDirty(t *testing.T) {
	g := newGuildSettings("1", DefaultData("guild"))

	if g.takeDirty() {
		t.Fatal("a freshly constructed GuildSettings must not start dirty")
	}

	g.Update(func(d *Data) {
		d.Prefix = "?"
	})

	if g.Snapshot().Prefix != "?" {
		t.Fatal("Update must mutate the stored settings")
	}
	if !g.takeDirty() {
		t.Fatal("Update must mark the guild dirty")
	}
	if g.takeDirty() {
		t.Fatal("takeDirty must clear the flag after reporting it")
	}
}

func TestGuildSettingsMusicConfigProjection(t *testing.T) {
	g := newGuildSettings("1", DefaultData("guild"))
	g.Update(func(d *Data) {
		d.Autopause = true
		d.Autoplay = true
		d.Volume = 0.5
		d.TimeoutSeconds = 300
		d.AllowAllDomains = false
		d.AllowedDomains = []string{"youtube.com"}
		d.BannedDomains = []string{"evil.example"}
	})

	cfg := g.MusicConfig()

	if !cfg.AutoPause || !cfg.Autoplay {
		t.Fatal("MusicConfig must project Autopause/Autoplay")
	}
	if cfg.Volume != 0.5 || cfg.TimeoutSeconds != 300 {
		t.Fatal("MusicConfig must project Volume/TimeoutSeconds")
	}
	if cfg.DomainPolicy.AllowAllDomains {
		t.Fatal("MusicConfig must project AllowAllDomains")
	}
	if !cfg.DomainPolicy.Allows("youtube.com") {
		t.Fatal("MusicConfig must project AllowedDomains into the DomainPolicy")
	}
	if cfg.DomainPolicy.Allows("evil.example") {
		t.Fatal("MusicConfig must project BannedDomains into the DomainPolicy")
	}
}
