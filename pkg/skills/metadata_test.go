package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclaration(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[string]string
	}{
		{
			name: "basic block",
			src:  "---\nname: weather\ndescription: Fetches forecasts\n---\n\n# Weather\n",
			want: map[string]string{"name": "weather", "description": "Fetches forecasts"},
		},
		{
			name: "quoted values stripped once",
			src:  "---\nname: \"weather\"\ndescription: 'single quoted'\nmetadata: '{\"always\": true}'\n---\n",
			want: map[string]string{"name": "weather", "description": "single quoted", "metadata": `{"always": true}`},
		},
		{
			name: "crlf normalized",
			src:  "---\r\nname: weather\r\ndescription: ok\r\n---\r\n",
			want: map[string]string{"name": "weather", "description": "ok"},
		},
		{
			name: "cr only normalized",
			src:  "---\rname: weather\r---\r",
			want: map[string]string{"name": "weather"},
		},
		{
			name: "no block",
			src:  "# Just a heading\nname: not-frontmatter\n",
			want: map[string]string{},
		},
		{
			name: "unterminated block",
			src:  "---\nname: weather\n",
			want: map[string]string{},
		},
		{
			name: "malformed lines skipped",
			src:  "---\nname: weather\nnot a pair\n:empty-key: x\n---\n",
			want: map[string]string{"name": "weather"},
		},
		{
			name: "empty input",
			src:  "",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDeclaration(tt.src))
		})
	}
}

func TestDecodeCapability_Absent(t *testing.T) {
	assert.Nil(t, DecodeCapability(map[string]string{"name": "weather"}))
	assert.Nil(t, DecodeCapability(map[string]string{metadataField: ""}))
}

func TestDecodeCapability_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"syntax error", `{"always": tru`},
		{"array payload", `[1, 2, 3]`},
		{"string payload", `"just a string"`},
		{"number payload", `42`},
		{"null payload", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, DecodeCapability(map[string]string{metadataField: tt.payload}))
		})
	}
}

func TestDecodeCapability_FullPayload(t *testing.T) {
	payload := `{
		"always": false,
		"skillKey": "wx",
		"primaryEnv": "WEATHER_KEY",
		"requires": {
			"bins": ["curl", "jq"],
			"env": ["WEATHER_KEY"],
			"config": ["tools.web.enabled"]
		},
		"install": [
			{"kind": "brew", "formula": "jq", "bins": ["jq"]},
			{"id": "yt", "kind": "uv", "package": "yt-dlp", "label": "yt-dlp downloader"}
		],
		"unknownField": {"ignored": true}
	}`

	cap := DecodeCapability(map[string]string{metadataField: payload})
	require.NotNil(t, cap)
	assert.False(t, cap.Always)
	assert.Equal(t, "wx", cap.SkillKey)
	assert.Equal(t, "WEATHER_KEY", cap.PrimaryEnv)
	assert.Equal(t, []string{"curl", "jq"}, cap.Requires.Bins)
	assert.Equal(t, []string{"WEATHER_KEY"}, cap.Requires.Env)
	assert.Equal(t, []string{"tools.web.enabled"}, cap.Requires.Config)

	require.Len(t, cap.Install, 2)
	assert.Equal(t, InstallSpec{Kind: "brew", Formula: "jq", Bins: []string{"jq"}}, cap.Install[0])
	assert.Equal(t, InstallSpec{ID: "yt", Kind: "uv", Package: "yt-dlp", Label: "yt-dlp downloader"}, cap.Install[1])
}

func TestDecodeCapability_WrongTypesTreatedAsAbsent(t *testing.T) {
	payload := `{
		"always": "yes",
		"skillKey": 7,
		"primaryEnv": ["KEY"],
		"requires": {"bins": ["ok", 1, null, "also-ok"], "env": "WEATHER_KEY"}
	}`

	cap := DecodeCapability(map[string]string{metadataField: payload})
	require.NotNil(t, cap)
	assert.False(t, cap.Always)
	assert.Empty(t, cap.SkillKey)
	assert.Empty(t, cap.PrimaryEnv)
	assert.Equal(t, []string{"ok", "also-ok"}, cap.Requires.Bins, "non-string list items dropped")
	assert.Nil(t, cap.Requires.Env, "non-list requires field treated as absent")
}

func TestDecodeCapability_InstallFiltering(t *testing.T) {
	payload := `{
		"install": [
			{"kind": "brew", "formula": "ffmpeg"},
			{"kind": "cargo", "package": "ripgrep"},
			{"formula": "no-kind-at-all"},
			{"type": "node", "package": "prettier"},
			"not an object"
		]
	}`

	cap := DecodeCapability(map[string]string{metadataField: payload})
	require.NotNil(t, cap)
	require.Len(t, cap.Install, 2, "unrecognized or missing kinds are dropped")
	assert.Equal(t, "brew", cap.Install[0].Kind)
	assert.Equal(t, "node", cap.Install[1].Kind, "type is accepted as an alias for kind")
	assert.Equal(t, "prettier", cap.Install[1].Package)
}

func TestInstallSpec_EffectiveID(t *testing.T) {
	specs := []InstallSpec{
		{Kind: "brew", Formula: "ffmpeg"},
		{ID: "custom", Kind: "node", Package: "prettier"},
		{Kind: "uv", Package: "yt-dlp"},
	}

	assert.Equal(t, "brew-0", specs[0].EffectiveID(0))
	assert.Equal(t, "custom", specs[1].EffectiveID(1))
	assert.Equal(t, "uv-2", specs[2].EffectiveID(2))

	entry := &Entry{Capability: &Capability{Install: specs}}

	spec, ok := entry.FindInstallSpec("uv-2")
	require.True(t, ok)
	assert.Equal(t, "yt-dlp", spec.Package)

	spec, ok = entry.FindInstallSpec("custom")
	require.True(t, ok)
	assert.Equal(t, "prettier", spec.Package)

	_, ok = entry.FindInstallSpec("node-1")
	assert.False(t, ok, "explicit id replaces the computed one")

	_, ok = entry.FindInstallSpec("nope")
	assert.False(t, ok)
}

func TestEntry_ConfigKey(t *testing.T) {
	entry := &Entry{Record: Record{Name: "weather"}}
	assert.Equal(t, "weather", entry.ConfigKey())

	entry.Capability = &Capability{SkillKey: "wx"}
	assert.Equal(t, "wx", entry.ConfigKey())
}
