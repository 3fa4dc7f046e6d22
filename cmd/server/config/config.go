package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"wgconf/internal/logger"

	"github.com/joho/godotenv"
)

// loadEnvFiles never overrides variables that are already set.
func loadEnvFiles() {
	envFiles := []string{
		".env",
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Error loading %s: %v", envFile, err)
			}
		}
	}
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	return value
}

func GetEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	return value == "true"
}

func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	n, err := strconv.Atoi(value)

	if err != nil {
		logger.Warn("Ignoring %s=%q: %v", key, value, err)
		return defaultValue
	}

	return n
}

// GetEnvLines splits a multi-line variable into trimmed, non-empty lines.
func GetEnvLines(key string, defaultValue string) []string {
	var lines []string

	for _, line := range strings.Split(GetEnv(key, defaultValue), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("Could not determine home directory: %v", err)
		return ""
	}
	return homeDir
}

func getDefaultDatabasePath(fallback string) string {
	homeDir := getHomeDir()
	if homeDir == "" {
		return fallback
	}
	return filepath.Join(homeDir, ".wgconf", "wgconf.db")
}

type Configuration struct {
	Release string

	Host     string
	Port     uint16
	Password string
	WebUI    bool

	WebUIPath string

	ReadOnly    bool
	AllowBackup bool

	BackupTrim     bool
	BackupTrimKeep int

	DatabasePath string
	LogLevel     string

	WireguardInterface string
	WireguardPath      string
	BackupsDir         string

	WGHost         string
	WGPort         int
	WGAddressSpace string

	WGPreUp    []string
	WGPostUp   []string
	WGPreDown  []string
	WGPostDown []string

	DefaultMTU                 int
	DefaultPersistentKeepalive int
	DefaultDNS                 string
	DefaultAllowedIPs          string

	WireguardRestartCommand string
}

// WireguardFileName is the configuration file name for the managed interface.
func (c *Configuration) WireguardFileName() string {
	return c.WireguardInterface + ".conf"
}

func (c *Configuration) WireguardConfigPath() string {
	return filepath.Join(c.WireguardPath, c.WireguardFileName())
}

func (c *Configuration) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultPostUp(port int, iface, internetIface string) string {
	return strings.Join([]string{
		fmt.Sprintf("iptables -I INPUT -p udp --dport %d -j ACCEPT;", port),
		fmt.Sprintf("iptables -I FORWARD -i %s -o %s -j ACCEPT;", internetIface, iface),
		fmt.Sprintf("iptables -I FORWARD -i %s -j ACCEPT;", iface),
		fmt.Sprintf("iptables -t nat -A POSTROUTING -o %s -j MASQUERADE;", internetIface),
	}, "\n")
}

func defaultPostDown(port int, iface, internetIface string) string {
	return strings.Join([]string{
		fmt.Sprintf("iptables -D INPUT -p udp --dport %d -j ACCEPT;", port),
		fmt.Sprintf("iptables -D FORWARD -i %s -o %s -j ACCEPT;", internetIface, iface),
		fmt.Sprintf("iptables -D FORWARD -i %s -j ACCEPT;", iface),
		fmt.Sprintf("iptables -t nat -D POSTROUTING -o %s -j MASQUERADE;", internetIface),
	}, "\n")
}

// Load reads the configuration from the environment.
func Load() *Configuration {
	loadEnvFiles()

	readOnly := GetEnvBool("WG_READONLY", false)
	wgInterface := GetEnv("WG_INTERFACE", "wg0")
	internetInterface := GetEnv("WG_INTERNET_INTERFACE", "eth0")
	wgPort := GetEnvInt("WG_PORT", 51820)

	return &Configuration{
		Release: GetEnv("RELEASE", "dev"),

		Host:     GetEnv("HOST", "0.0.0.0"),
		Port:     uint16(GetEnvInt("PORT", 51821)),
		Password: GetEnv("PASSWORD", ""),
		WebUI:    GetEnvBool("WG_WEBUI", true),

		WebUIPath: GetEnv("WG_WEBUI_PATH", "web/dist"),

		ReadOnly:    readOnly,
		AllowBackup: GetEnvBool("WG_ALLOW_BACKUP", !readOnly),

		BackupTrim:     GetEnvBool("WG_BACKUP_TRIM", true),
		BackupTrimKeep: GetEnvInt("WG_BACKUP_TRIM_KEEP", 15),

		DatabasePath: GetEnv("DATABASE_PATH", getDefaultDatabasePath("/var/lib/wgconf/wgconf.db")),
		LogLevel:     GetEnv("LOG_LEVEL", "INFO"),

		WireguardInterface: wgInterface,
		WireguardPath:      GetEnv("WG_PATH", "/etc/wireguard/"),
		BackupsDir:         GetEnv("WG_BACKUPS_DIR", "wg-easy-backups"),

		WGHost:         GetEnv("WG_HOST", ""),
		WGPort:         wgPort,
		WGAddressSpace: GetEnv("WG_ADDRESS_SPACE", "10.1.3.1/24"),

		WGPreUp:    GetEnvLines("WG_PRE_UP", ""),
		WGPostUp:   GetEnvLines("WG_POST_UP", defaultPostUp(wgPort, wgInterface, internetInterface)),
		WGPreDown:  GetEnvLines("WG_PRE_DOWN", ""),
		WGPostDown: GetEnvLines("WG_POST_DOWN", defaultPostDown(wgPort, wgInterface, internetInterface)),

		DefaultMTU:                 GetEnvInt("WG_DEFAULT_MTU", 1420),
		DefaultPersistentKeepalive: GetEnvInt("WG_DEFAULT_PERSISTENT_KEEPALIVE", 25),
		DefaultDNS:                 GetEnv("WG_DEFAULT_DNS", "1.1.1.1,1.0.0.1"),
		DefaultAllowedIPs:          GetEnv("WG_DEFAULT_ALLOWED_IPS", "0.0.0.0/0, ::/0"),

		WireguardRestartCommand: GetEnv("WG_RESTART_COMMAND", ""),
	}
}

var Config = Load()
