package render

import "testing"

func TestAssetResolverKeepsBaseURLPath(t *testing.T) {
	cases := []struct {
		name string
		base string
		want string
	}{
		{"default local mount", "", "/assets/datatable/2.0.0/datatable.min.js"},
		{"origin only", "https://cdn.example.test", "https://cdn.example.test/datatable/2.0.0/datatable.min.js"},
		{"origin with trailing slash", "https://cdn.example.test/", "https://cdn.example.test/datatable/2.0.0/datatable.min.js"},
		{"origin with mount path", "https://cdn.example.test/libs", "https://cdn.example.test/libs/datatable/2.0.0/datatable.min.js"},
		{"relative mount path", "/static/vendor/", "/static/vendor/datatable/2.0.0/datatable.min.js"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := NewAssetResolver(AssetConfig{BaseURL: tc.base})
			got, err := resolver.Resolve(AssetScript, "datatable", "2.0.0", "datatable.min.js")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tc.want {
				t.Fatalf("resolved %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAssetResolverUnknownGroup(t *testing.T) {
	resolver := NewAssetResolver(AssetConfig{Group: "cdn"})
	if _, err := resolver.Resolve(AssetScript, "datatable", "2.0.0", "datatable.min.js"); err != nil {
		t.Fatalf("resolve through configured group: %v", err)
	}

	var empty *AssetResolver
	if _, err := empty.Resolve(AssetScript, "datatable", "2.0.0", "datatable.min.js"); err == nil {
		t.Fatal("expected error from unconfigured resolver")
	}
}
