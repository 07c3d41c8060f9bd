package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAudioURL_YouTube(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "watch url",
			in:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name: "tracking params dropped",
			in:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42&list=RDdQw4w9WgXcQ",
			want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name: "short link",
			in:   "https://youtu.be/dQw4w9WgXcQ",
			want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name: "shorts",
			in:   "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name: "no scheme",
			in:   "youtube.com/watch?v=dQw4w9WgXcQ",
			want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeAudioURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeAudioURL_SoundCloud(t *testing.T) {
	got, err := NormalizeAudioURL("https://soundcloud.com/artist-name/track-name")
	require.NoError(t, err)
	assert.Equal(t, "https://soundcloud.com/artist-name/track-name", got)

	// Trailing slash collapses to the same canonical form.
	got, err = NormalizeAudioURL("https://soundcloud.com/artist-name/track-name/")
	require.NoError(t, err)
	assert.Equal(t, "https://soundcloud.com/artist-name/track-name", got)

	// SoundCloud never matches beyond the exact user/track shape.
	_, err = NormalizeAudioURL("https://soundcloud.com/artist-name/track-name/extra")
	require.Error(t, err)
}

func TestNormalizeAudioURL_Rejected(t *testing.T) {
	for _, in := range []string{
		"",
		"https://example.com/audio.mp3",
		"https://www.youtube.com/watch?v=short", // id too short
		"https://vimeo.com/12345",
		"https://soundcloud.com/just-a-user",
	} {
		_, err := NormalizeAudioURL(in)
		assert.Error(t, err, "expected rejection for %q", in)
	}
}

func TestIsYouTubeURL(t *testing.T) {
	assert.True(t, IsYouTubeURL("https://youtu.be/dQw4w9WgXcQ"))
	assert.True(t, IsYouTubeURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.False(t, IsYouTubeURL("https://soundcloud.com/artist/track"))
}
