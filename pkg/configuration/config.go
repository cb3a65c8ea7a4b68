package configuration

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds the parsed settings.cfg sections.
type Config struct {
	settings map[string]map[string]string
	filePath string
	mu       sync.RWMutex
}

var (
	globalConfig *Config
	once         sync.Once
)

// sectionOrder is the order sections are written back to disk.
var sectionOrder = []string{
	"Server", "Terminal", "Snake", "Editor", "Network", "WebSocket",
	"Sessions", "JWT", "Database", "Metrics", "TLS", "Debug",
}

// Initialize loads the global configuration from configPath. A missing file is
// created with defaults. A settings.local.cfg next to it overrides single keys.
func Initialize(configPath string) error {
	var err error
	once.Do(func() {
		globalConfig, err = loadConfig(configPath)
		if err != nil {
			return
		}
		localPath := filepath.Join(filepath.Dir(configPath), "settings.local.cfg")
		if _, statErr := os.Stat(localPath); statErr == nil {
			// a broken overlay is ignored, the base config stays usable
			_ = globalConfig.loadLocalConfig(localPath)
		}
	})
	return err
}

func loadConfig(filePath string) (*Config, error) {
	config := &Config{
		settings: make(map[string]map[string]string),
		filePath: filePath,
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		config.createDefaultConfig()
		if err := config.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := config.parse(file); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) loadLocalConfig(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parse(file)
}

// parse reads INI lines into c.settings. Later keys override earlier ones.
// Keys outside of any section are dropped.
func (c *Config) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	currentSection := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			if c.settings[currentSection] == nil {
				c.settings[currentSection] = make(map[string]string)
			}
			continue
		}

		if currentSection == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		c.settings[currentSection][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return scanner.Err()
}

// createDefaultConfig fills in every parameter the server reads.
func (c *Config) createDefaultConfig() {
	c.settings["Server"] = map[string]string{
		"listen_address": ":8080",
		"static_dir":     "web",
	}

	c.settings["Terminal"] = map[string]string{
		"admin_password": "admin123",
		"prompt_host":    "flivyn",
		"default_theme":  "dark",
	}

	c.settings["Snake"] = map[string]string{
		"grid_size":     "20",
		"tick_interval": "150ms",
	}

	c.settings["Editor"] = map[string]string{
		"max_lines": "5000",
	}

	c.settings["Network"] = map[string]string{
		"pong_timeout":        "90s",
		"write_wait_timeout":  "10s",
		"max_message_size_kb": "64",
		"max_channel_buffer":  "256",
	}

	c.settings["WebSocket"] = map[string]string{
		"allowed_origins":   "http://localhost:8080,http://127.0.0.1:8080",
		"read_buffer_size":  "4096",
		"write_buffer_size": "4096",
	}

	c.settings["Sessions"] = map[string]string{
		"max_sessions_per_ip":     "5",
		"max_messages_per_minute": "600",
		"max_inactive_time":       "30m",
		"cleanup_interval":        "5m",
	}

	c.settings["JWT"] = map[string]string{
		"secret_key":             "ENVIRONMENT_VARIABLE_NOT_SET_FALLBACK",
		"token_expiration_hours": "24",
	}

	c.settings["Database"] = map[string]string{
		"path": "flivynterm.db",
	}

	c.settings["Metrics"] = map[string]string{
		"enabled": "true",
		"path":    "/metrics",
	}

	c.settings["TLS"] = map[string]string{
		"enable_tls":           "false",
		"enable_letsencrypt":   "false",
		"domain":               "",
		"letsencrypt_email":    "",
		"cert_cache_dir":       "./certs",
		"cert_file":            "./certs/server.crt",
		"key_file":             "./certs/server.key",
		"https_port":           "8443",
		"force_https_redirect": "false",
	}

	c.settings["Debug"] = map[string]string{
		"enable_debug_logging": "true",
		"log_level":            "INFO",
		"log_file":             "flivynterm.log",
		"max_log_size_mb":      "10",
		"log_rotation_count":   "3",
		"log_websocket":        "false",
		"log_terminal":         "true",
		"log_session":          "false",
		"log_filesystem":       "false",
		"log_editor":           "false",
		"log_game":             "false",
		"log_auth":             "true",
		"log_database":         "true",
		"log_metrics":          "false",
		"log_config":           "true",
		"log_general":          "true",
	}
}

// saveToFile writes the configuration back to disk with sorted keys.
func (c *Config) saveToFile() error {
	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(c.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintln(w, "; FlivynTerm configuration")
	fmt.Fprintln(w, "; Generated automatically - modify with care")
	fmt.Fprintln(w, ";")
	fmt.Fprintln(w)

	written := make(map[string]bool, len(c.settings))
	for _, section := range sectionOrder {
		if settings, exists := c.settings[section]; exists {
			writeSection(w, section, settings)
			written[section] = true
		}
	}
	// sections added at runtime via SetString
	var extra []string
	for section := range c.settings {
		if !written[section] {
			extra = append(extra, section)
		}
	}
	sort.Strings(extra)
	for _, section := range extra {
		writeSection(w, section, c.settings[section])
	}

	return w.Flush()
}

func writeSection(w io.Writer, section string, settings map[string]string) {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "[%s]\n", section)
	for _, key := range keys {
		fmt.Fprintf(w, "%s = %s\n", key, settings[key])
	}
	fmt.Fprintln(w)
}

// GetString returns a string value or defaultValue if unset.
func GetString(section, key, defaultValue string) string {
	if globalConfig == nil {
		return defaultValue
	}

	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()

	if sectionMap, exists := globalConfig.settings[section]; exists {
		if value, exists := sectionMap[key]; exists {
			return value
		}
	}

	return defaultValue
}

// GetInt returns an integer value or defaultValue if unset or malformed.
func GetInt(section, key string, defaultValue int) int {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(str); err == nil {
		return value
	}
	return defaultValue
}

// GetFloat returns a float value or defaultValue if unset or malformed.
func GetFloat(section, key string, defaultValue float64) float64 {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}
	if value, err := strconv.ParseFloat(str, 64); err == nil {
		return value
	}
	return defaultValue
}

// GetBool returns a boolean value or defaultValue if unset or malformed.
func GetBool(section, key string, defaultValue bool) bool {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(str); err == nil {
		return value
	}
	return defaultValue
}

// GetDuration parses values like "150ms" or "30m".
func GetDuration(section, key string, defaultValue time.Duration) time.Duration {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(str); err == nil {
		return value
	}
	return defaultValue
}

// GetSection returns a copy of all key-value pairs of a section.
func GetSection(sectionName string) map[string]string {
	result := make(map[string]string)
	if globalConfig == nil {
		return result
	}

	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()

	for key, value := range globalConfig.settings[sectionName] {
		result[key] = value
	}
	return result
}

// SetString sets a value in memory. Call Save to persist it.
func SetString(section, key, value string) {
	if globalConfig == nil {
		return
	}

	globalConfig.mu.Lock()
	defer globalConfig.mu.Unlock()

	if globalConfig.settings[section] == nil {
		globalConfig.settings[section] = make(map[string]string)
	}
	globalConfig.settings[section][key] = value
}

// Save writes the current configuration to its file.
func Save() error {
	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()

	return globalConfig.saveToFile()
}
