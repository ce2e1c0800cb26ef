package newsletterai_test

import (
	"os"
	"strings"
	"testing"
)

// readFile はリポジトリ直下のファイルを読み込むヘルパー。
func readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// serviceBlock はdocker-compose.ymlから指定サービスの定義部分を切り出すヘルパー。
func serviceBlock(t *testing.T, compose, name string) string {
	t.Helper()
	start := strings.Index(compose, "\n  "+name+":\n")
	if start < 0 {
		t.Fatalf("docker-compose.yml should contain service %q", name)
	}
	lines := strings.Split(compose[start+1:], "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 && isBlockBoundary(line) {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// isBlockBoundary は次のサービス定義かトップレベルキーの開始行かを返す。
func isBlockBoundary(line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, " ") {
		return true
	}
	return strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "   ") && !strings.HasPrefix(line, "  #")
}

func TestDockerfileMultiStageBuild(t *testing.T) {
	content := readFile(t, "Dockerfile")

	// マルチステージビルドの確認: ビルドステージと実行ステージが存在すること
	if !strings.Contains(content, "FROM golang:") {
		t.Error("Dockerfile should contain a Go builder stage (FROM golang:)")
	}

	// 最終ステージは軽量イメージであること
	var lastFrom string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "FROM ") {
			lastFrom = trimmed
		}
	}
	if !strings.Contains(lastFrom, "gcr.io/distroless") {
		t.Errorf("final stage should use a distroless image, got: %s", lastFrom)
	}
}

func TestDockerfileBuildsEntrypointBinary(t *testing.T) {
	content := readFile(t, "Dockerfile")

	if !strings.Contains(content, "./cmd/newsletterai") {
		t.Error("Dockerfile should build ./cmd/newsletterai")
	}
	if !strings.Contains(content, `ENTRYPOINT ["/newsletterai"]`) {
		t.Error("Dockerfile should use the newsletterai binary as ENTRYPOINT")
	}
}

// distrolessにはシェルがないため、ヘルスチェックはバイナリのサブコマンドで行う
func TestDockerfileHealthcheckUsesSubcommand(t *testing.T) {
	content := readFile(t, "Dockerfile")

	if !strings.Contains(content, `"/newsletterai", "healthcheck"`) {
		t.Error("Dockerfile HEALTHCHECK should call the healthcheck subcommand")
	}
}

func TestDockerComposeServices(t *testing.T) {
	content := readFile(t, "docker-compose.yml")

	for _, svc := range []string{"db", "migrate", "api", "worker"} {
		serviceBlock(t, content, svc)
	}
	if !strings.Contains(content, "image: postgres:") {
		t.Error("docker-compose.yml should use PostgreSQL image")
	}
}

func TestDockerComposeSubcommands(t *testing.T) {
	content := readFile(t, "docker-compose.yml")

	tests := map[string]string{
		"api":     `command: ["serve"]`,
		"worker":  `command: ["worker"]`,
		"migrate": `command: ["migrate"]`,
	}
	for svc, want := range tests {
		if block := serviceBlock(t, content, svc); !strings.Contains(block, want) {
			t.Errorf("service %s should run %s", svc, want)
		}
	}
}

// 外部APIを呼ぶのはapiのみで、workerとdbは内部ネットワークに閉じることを検証
func TestDockerComposeEgressRestriction(t *testing.T) {
	content := readFile(t, "docker-compose.yml")

	if !strings.Contains(content, "internal: true") {
		t.Error("docker-compose.yml should define an internal network (internal: true)")
	}

	if block := serviceBlock(t, content, "api"); !strings.Contains(block, "- external") {
		t.Error("api service should join the external network")
	}
	for _, svc := range []string{"worker", "db"} {
		if block := serviceBlock(t, content, svc); strings.Contains(block, "- external") {
			t.Errorf("%s service should not join the external network", svc)
		}
	}
}
