package tools

import (
	"net/http"
	"time"

	"github.com/owl-cli/owl/internal/orchestrator/models"
	"github.com/owl-cli/owl/internal/profile"
)

// Deps carries the external collaborators the default tool set needs.
type Deps struct {
	// Runner executes pre-tokenized commands for the package manager tools.
	Runner argvRunner
	// Profile backs manage_profile and check_policies.
	Profile *profile.Store
	// HTTPClient serves web_scrape. Nil gets a client with a 10s timeout.
	HTTPClient *http.Client
	// SearchAPIKey and SearchEngineID configure web_search. The tool stays
	// registered without them and reports a configuration error when called.
	SearchAPIKey   string
	SearchEngineID string
}

// NewDefaultRegistry assembles the full built-in tool set.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return NewRegistry(
		Entry{Name: "read_file", Scope: models.ScopeFilesystemRead, PathArg: "file_path", Handler: readFile},
		Entry{Name: "write_file", Scope: models.ScopeFilesystemWrite, PathArg: "file_path", Handler: writeFile},
		Entry{Name: "list_directory", Scope: models.ScopeFilesystemRead, PathArg: "path", Handler: listDirectory},
		Entry{Name: "monitor_file", Scope: models.ScopeFilesystemRead, PathArg: "file_path", Handler: monitorFile},
		Entry{Name: "git_status", Scope: models.ScopeFilesystemRead, PathArg: "path", Handler: gitStatus},

		Entry{Name: "get_cpu_info", Scope: models.ScopeSystemRead, Handler: getCPUInfo},
		Entry{Name: "get_memory_info", Scope: models.ScopeSystemRead, Handler: getMemoryInfo},
		Entry{Name: "get_disk_usage", Scope: models.ScopeSystemRead, Handler: getDiskUsage},
		Entry{Name: "list_processes", Scope: models.ScopeSystemRead, Handler: listProcesses},
		Entry{Name: "read_windows_event_log", Scope: models.ScopeSystemRead, Handler: readWindowsEventLog(deps.Runner)},

		Entry{Name: "install_package", Scope: models.ScopeSystemWrite, Handler: installPackage(deps.Runner)},
		Entry{Name: "uninstall_package", Scope: models.ScopeSystemWrite, Handler: uninstallPackage(deps.Runner)},
		Entry{Name: "list_packages", Scope: models.ScopeSystemRead, Handler: listPackages(deps.Runner)},

		Entry{Name: "web_search", Scope: models.ScopeNetworkRead, Handler: webSearch(deps.SearchAPIKey, deps.SearchEngineID)},
		Entry{Name: "web_scrape", Scope: models.ScopeNetworkRead, Handler: webScrape(client)},

		Entry{Name: "manage_profile", Scope: models.ScopeFilesystemWrite, Handler: manageProfile(deps.Profile)},
		Entry{Name: "check_policies", Scope: models.ScopeSystemRead, Handler: checkPolicies(deps.Profile)},
	)
}
