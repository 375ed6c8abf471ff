package assistant

import "strings"

type topic struct {
	keyword string
	text    string
}

// knowledge is checked in order; the first keyword contained in the message wins.
var knowledge = []topic{
	{"phishing", `Phishing is a social engineering attack where attackers disguise as trustworthy entities to steal credentials.
Key indicators to look for:
- Suspicious sender addresses (look for typos in domain names)
- Urgent language creating panic
- Generic greetings
- Suspicious links (hover to check actual URL)
- Requests for credentials or sensitive information`},

	{"event log", `Windows Event Logs are crucial for forensics:
- Event ID 4624: Successful logon
- Event ID 4625: Failed logon
- Event ID 4648: Explicit credential logon
- Event ID 4672: Special privileges assigned
- Event ID 4720: User account created
- Event ID 4726: User account deleted`},

	{"lateral movement", `Lateral movement techniques include:
- Pass-the-Hash/Pass-the-Ticket
- Remote Desktop Protocol (RDP)
- Windows Management Instrumentation (WMI)
- PsExec
- PowerShell Remoting
- SMB/Windows Admin Shares`},

	{"persistence", `Common persistence mechanisms:
- Registry Run keys (HKLM or HKCU)
- Scheduled tasks
- Services
- Startup folders
- WMI event subscriptions
- DLL hijacking
- COM hijacking`},

	{"ransomware", `Ransomware indicators:
- Unusual file extensions (.encrypted, .locked, etc.)
- Ransom notes
- Disabled security software
- Mass file encryption timestamps
- Known variants: LockBit, REvil, Conti, Ryuk`},

	{"memory forensics", `Memory forensics involves:
- Dumping process memory
- Analyzing running processes
- Finding injected code
- Extracting credentials
- Timeline reconstruction
- Tools: Volatility, Rekall`},

	{"network forensics", `Network forensics focuses on:
- Capturing network traffic
- Analyzing logs (IIS, Apache, nginx)
- DNS query analysis
- Identifying C2 communications
- Packet analysis with Wireshark`},
}

func lookupKnowledge(lower string) (string, bool) {
	for _, t := range knowledge {
		if strings.Contains(lower, t.keyword) {
			return t.text, true
		}
	}
	return "", false
}

var defaultTips = []string{
	"I'm here to help with your investigation. You can ask me about forensics concepts, request hints, or ask about evidence you've found.",
	"Use the terminal to navigate the file system. Try commands like 'ls', 'cd', and 'type' to examine files.",
	`Don't forget to check event logs in C:\Windows\System32\config\ - they often contain crucial evidence.`,
	"Remember: document everything you find. Your findings contribute to solving the case!",
	"The terminal supports commands like 'ls', 'cd', 'dir', 'type', 'cat', 'ipconfig', and 'netstat'.",
}
