package docs

import (
        "strings"
        "testing"
)

func TestTopics(t *testing.T) {
        t.Parallel()

        got := strings.Join(Topics(), ",")
        if got != "config,content,controls,entrance" {
                t.Fatalf("topics = %q", got)
        }
}

func TestGet(t *testing.T) {
        t.Parallel()

        body, ok := Get(" Controls ")
        if !ok || !strings.HasPrefix(body, "# ") {
                t.Fatalf("expected controls topic; ok=%v body=%q", ok, body)
        }
        for _, bad := range []string{"", "nope", "../docs", "content/controls"} {
                if _, ok := Get(bad); ok {
                        t.Fatalf("Get(%q) should fail", bad)
                }
        }
}
