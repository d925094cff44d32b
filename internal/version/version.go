// 包 version：构建信息占位，由构建脚本通过 -ldflags 注入
package version

// Commit：构建时注入的提交哈希；本地构建为 dev
var Commit = "dev"
