package config

// 构建时通过 -ldflags 注入
var (
	Version    string = "dev"
	CommitHash string = "n/a"
	BuildTime  string = ""
)

// IsRelease 判断是否为发布构建
func IsRelease() bool {
	return Version != "dev" && CommitHash != "n/a"
}
