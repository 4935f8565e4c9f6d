package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store Store
		key   string
		want  string
	}{
		{
			name:  "custom base url",
			store: Store{bucket: "pix", region: "us-east-1", publicBaseURL: "https://cdn.example.com"},
			key:   "users/u-1/images/a.png",
			want:  "https://cdn.example.com/users/u-1/images/a.png",
		},
		{
			name:  "regional bucket url",
			store: Store{bucket: "pix", region: "eu-west-1"},
			key:   "users/u-1/images/a.png",
			want:  "https://pix.s3.eu-west-1.amazonaws.com/users/u-1/images/a.png",
		},
		{
			name:  "no region",
			store: Store{bucket: "pix"},
			key:   "a.png",
			want:  "https://pix.s3.amazonaws.com/a.png",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.store.publicURL(tt.key); got != tt.want {
				t.Fatalf("publicURL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
