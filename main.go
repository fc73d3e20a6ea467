package main

import (
	_ "embed"

	"github.com/Zuplu/sc-overlay/internal"
)

var (
	Version string
	//go:embed LICENSE
	LicenseText string
	//go:embed configs/config.default.yaml
	defaultConfigYaml []byte
)

func main() {
	overlay.SetDefaultConfig(&defaultConfigYaml)
	overlay.Run(&Version, &LicenseText)
}
