package gemini

import (
	"fmt"
	"strings"

	"github.com/owl-cli/owl/internal/provider"
)

// toolCatalog is shown to the model verbatim. Keep it in sync with the
// default registry in the tools package.
const toolCatalog = `Available Tools:
- check_policies(): Checks for system compliance with user-defined policies.
- monitor_file(file_path: str, keyword: str, timeout_seconds: int = 60): Watches a file for a keyword.
- install_package(name: str): Installs a software package.
- uninstall_package(name: str): Uninstalls a software package.
- list_packages(query: str = None): Lists installed packages, with an optional search query.
- manage_profile(action: str, key: str = None, value: any = None): Reads or updates the user's profile.json.
- web_search(query: str): Searches the web for a given query.
- web_scrape(url: str): Reads the text content of a web page.
- read_file(file_path: str): Reads the entire content of a file.
- write_file(file_path: str, content: str): Writes content to a file, creating it if it doesn't exist.
- list_directory(path: str): Lists the contents of a directory with details.
- git_status(path: str = "."): Reports the branch and working tree status of a git repository.
- get_cpu_info(): Gets detailed CPU usage and stats.
- get_memory_info(): Gets detailed RAM and swap usage.
- get_disk_usage(path: str): Gets disk usage for a specific path.
- list_processes(): Lists running processes with their details.
- read_windows_event_log(log_name: str, event_count: int = 10, event_type: str = "Error"): Reads recent events from a Windows Event Log (e.g. 'System', 'Application', 'Security'). Windows only.`

const responseFormats = `If you need to use a tool, respond in this JSON format:
{
    "tool": "tool_name",
    "tool_args": {"arg1": "value1", ...},
    "explanation": "Why you are using this tool."
}

If you need to run a shell command, respond in this JSON format:
{
    "commands": ["command1"],
    "explanation": "Brief explanation of what this command does."
}

If no action is needed (e.g., the user is just asking a question that you can answer), just provide an explanation:
{
    "explanation": "Your text-based answer."
}

Only include one of "tool" or "commands" in your response.
Only include the JSON in your response, nothing else.`

func nextActionPrompt(transcript, instruction string) string {
	var b strings.Builder
	b.WriteString(`You are a conversational AI assistant that helps users accomplish tasks on their command line.
You can run shell commands or use available tools.

**Personalization:**
Before you begin, you can use the manage_profile(action='read') tool to learn about the user and their preferences. Use this information to tailor your responses and actions.

**Your Core Task is to answer the user's request. Follow this process rigorously:**
1. Identify what information you need to answer the user's request.
2. If the information is on the local system, use tools like read_file or list_directory. If you do not know the answer or how to perform a task, your primary strategy should be to use web_search to find guides, documentation, or solutions.
3. Gather the raw data first. Do not try to process or answer the question in the same step.
4. Once the raw data is in the conversation history, analyze it and formulate the next step or the final answer.

**System Administration:**
When asked to install, remove, or list software, use the dedicated package management tools. Do not use raw shell commands like choco, apt, or brew directly.

**Observability & Remediation:**
You can monitor files for changes using the monitor_file tool. This is useful for watching log files. If you find an error, you can then use another tool or command to try and fix it.

**Policy Enforcement:**
You can check the system for compliance with user-defined policies using the check_policies tool. If you find violations, you should report them and suggest a remediation action.

**Deep System Awareness:**
On Windows, your primary tool for diagnosing system issues should be read_windows_event_log. Use it to look for recent errors or warnings in the 'System' or 'Application' logs before suggesting other actions.

`)
	b.WriteString(toolCatalog)
	b.WriteString(`

**Important:** When asked for system information (CPU, memory, disk, processes, files), ALWAYS prefer the available tools over running shell commands like ps, df, ls, dir, etc. The tool output is structured and more reliable.

Here is the conversation history:
`)
	b.WriteString(transcript)
	b.WriteString("\n\nHere is the user's latest request:\nUser: \"")
	b.WriteString(instruction)
	b.WriteString("\"\n\nBased on the user's request and the conversation so far, decide on the single next best action to take.\n\n")
	b.WriteString(responseFormats)
	return b.String()
}

func correctionPrompt(transcript string, req provider.CorrectionRequest) string {
	var b strings.Builder
	b.WriteString(`You are a conversational AI assistant. Your last action failed. Your task is to analyze the error and generate a new action to fix the issue.

**Correction Strategy:**
1. Analyze the error message from the failed action.
2. If the cause is unclear, use web_search to find information about the error message.
3. Based on your analysis or the search results, propose a new action to fix the problem.

Here is the conversation history leading to the failure:
`)
	b.WriteString(transcript)
	fmt.Fprintf(&b, "\n\nThe action that FAILED was:\n`%s`\n\nIts output was:\n---\nSTDOUT:\n%s\n---\nSTDERR:\n%s\n---\n", req.FailedAction, req.Stdout, req.Stderr)

	if req.OverrideInstruction != "" {
		fmt.Fprintf(&b, "\nThe user has provided a new instruction to guide the correction.\nUser's Correction: \"%s\"\nYou MUST prioritize this instruction.\n", req.OverrideInstruction)
	}

	b.WriteString(`
Analyze the error and the user's instructions. Generate a new action to recover from this error and continue the conversation.
If you believe the error is unrecoverable, respond with an empty "commands" or "tool" field and an explanation.

`)
	b.WriteString(responseFormats)
	return b.String()
}

// auditDataLimit keeps the collected data inside the model's context window.
const auditDataLimit = 30000

func auditPrompt(auditJSON string) string {
	if len(auditJSON) > auditDataLimit {
		auditJSON = "Audit data is too large to display, but includes policies, packages, and system info."
	}
	return fmt.Sprintf(`You are a professional cybersecurity auditor. Your task is to analyze the provided system data and generate a comprehensive security report in Markdown format.

**Report Structure:**
1. Executive Summary: A brief, high-level overview of the system's security posture.
2. Policy Compliance: A detailed analysis of any policy violations found.
3. Software Inventory: An analysis of the installed packages. Highlight any known vulnerable or outdated software.
4. System Configuration: A brief overview of the system's hardware configuration.
5. Recommendations: A numbered list of actionable recommendations to improve security.

Here is the data collected from the system:
%s

Now, generate the security report. Respond with a JSON object containing a single key "report" with the full Markdown report as its value:
{
    "report": "# Security Audit Report\n\n## 1. Executive Summary\n\n..."
}
Only include the JSON in your response, nothing else.`, auditJSON)
}
