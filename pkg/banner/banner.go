package banner

import (
	"fmt"

	"chatroom/pkg/config"
)

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗██████╗  ██████╗  ██████╗ ███╗   ███╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝██╔══██╗██╔═══██╗██╔═══██╗████╗ ████║
██║     ███████║███████║   ██║   ██████╔╝██║   ██║██║   ██║██╔████╔██║
██║     ██╔══██║██╔══██║   ██║   ██╔══██╗██║   ██║██║   ██║██║╚██╔╝██║
╚██████╗██║  ██║██║  ██║   ██║   ██║  ██║╚██████╔╝╚██████╔╝██║ ╚═╝ ██║
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝ ╚═════╝  ╚═════╝ ╚═╝     ╚═╝
`

// Print writes the startup banner with the effective runtime settings.
func Print(eff config.EffectiveConfigResult, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", eff.Addr)
	fmt.Printf("DB Path:  %s\n", eff.DBPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Source:   %s\n", eff.Source)
	fmt.Printf("Presence: timeout=%s sweep=%s\n",
		eff.Config.Presence.HeartbeatTimeout.Std(), eff.Config.Presence.SweepInterval.Std())
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /participants       - Join the room (JSON: name)")
	fmt.Println("GET  /participants       - List active participants")
	fmt.Println("POST /messages           - Post a message (JSON: to, text, type; header: User)")
	fmt.Println("GET  /messages?limit=<n> - List messages visible to the User header")
	fmt.Println("PUT  /messages/{id}      - Edit own message")
	fmt.Println("DELETE /messages/{id}    - Delete own message")
	fmt.Println("POST /status             - Heartbeat (header: User)")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/participants' -d '{\"name\": \"alice\"}'\n", eff.Addr)
	fmt.Printf("curl -H 'User: alice' 'http://localhost%s/messages?limit=10'\n", eff.Addr)
}
