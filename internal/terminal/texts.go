package terminal

const helpText = `Available commands:
  ls, dir     - List directory contents
  cd <path>   - Change directory
  pwd         - Print working directory
  type <file> - Display file contents (alias: cat)
  cat <file>  - Display file contents
  clear       - Clear terminal
  whoami      - Display current user
  ipconfig    - Display network configuration
  netstat     - Display network connections
  systeminfo  - Display system information
  exit        - Exit current case`

const whoamiText = `abc\jsmith`

const ipconfigText = `Windows IP Configuration

Ethernet adapter Ethernet0:

   Connection-specific DNS Suffix  . : abc.corp.local
   IPv4 Address. . . . . . . . . . . : 192.168.1.105
   Subnet Mask . . . . . . . . . . . : 255.255.255.0
   Default Gateway . . . . . . . . . : 192.168.1.1`

const netstatText = `Active Connections

  Proto  Local Address          Foreign Address        State
  TCP    192.168.1.105:139      0.0.0.0:0              LISTENING
  TCP    192.168.1.105:445      192.168.1.1:139        ESTABLISHED
  TCP    192.168.1.105:50768    192.168.1.100:3389    ESTABLISHED
  TCP    192.168.1.105:51876    192.168.1.100:80     TIME_WAIT`

const systeminfoText = `Host Name:           DESKTOP-JSMITH
OS Name:           Microsoft Windows 10 Pro
OS Version:        10.0.19045 N/A Build 19045
System Type:       x64-based PC
Processor:         Intel(R) Core(TM) i7-10700 CPU @ 2.90GHz
Domain:            abc.corp.local
Logged On User:    jsmith`

const exitText = "Use the Case Manager to leave this investigation."
