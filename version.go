package objects

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/blang/semver/v4"
)

var buildModules = sync.OnceValue(func() map[string]string {
	out := make(map[string]string)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	out[info.Main.Path] = strings.TrimPrefix(info.Main.Version, "v")
	for _, dep := range info.Deps {
		mod := dep
		if mod.Replace != nil {
			mod = mod.Replace
		}
		out[dep.Path] = strings.TrimPrefix(mod.Version, "v")
	}
	return out
})

// installedVersion returns the version of the module providing pkgPath.
// An explicitly registered version wins; otherwise build info is
// consulted with a longest-prefix module match. Empty when unknown.
func installedVersion(pkgPath, explicit string) string {
	if explicit != "" {
		return explicit
	}
	modules := buildModules()
	for path := pkgPath; path != ""; {
		if version, ok := modules[path]; ok && version != "(devel)" {
			return version
		}
		idx := strings.LastIndex(path, "/")
		if idx < 0 {
			break
		}
		path = path[:idx]
	}
	return ""
}

// warnPackageMismatch compares the version a document recorded against
// the installed one. Standard level reports an older installation,
// verbose any difference. Unparseable versions are not compared.
func warnPackageMismatch(cfg *config, cls *Class, recorded, installed string) {
	if cfg.packageWarn == WarnSilent || recorded == "" || installed == "" || recorded == installed {
		return
	}
	rec, err := semver.ParseTolerant(recorded)
	if err != nil {
		return
	}
	inst, err := semver.ParseTolerant(installed)
	if err != nil {
		return
	}
	older := inst.LT(rec)
	if !older && cfg.packageWarn < WarnVerbose {
		return
	}
	relation := "differs from"
	if older {
		relation = "is older than"
	}
	cfg.warn(Warning{
		Kind:      WarnPackageMismatch,
		Class:     cls.Key(),
		Recorded:  recorded,
		Installed: installed,
		Message: fmt.Sprintf("installed version %q of %s %s recorded version %q",
			installed, cls.pkgPath, relation, recorded),
	})
}
