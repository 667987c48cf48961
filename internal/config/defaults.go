package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Telegram: TelegramConfig{
			Token: "${TELEGRAM_TOKEN}",
		},
		Webhook: WebhookConfig{
			Port: 8080,
			Path: "/webhook",
		},
		Google: GoogleConfig{
			ClientID:     "${GOOGLE_CLIENT_ID}",
			ClientSecret: "${GOOGLE_CLIENT_SECRET}",
			RefreshToken: "${GOOGLE_REFRESH_TOKEN}",
		},
		Mail: MailConfig{
			MaxResults: 3,
			SenderSuggestions: []string{
				"boss@company.com",
				"billing@vendor.com",
			},
		},
		Completion: CompletionConfig{
			APIKey:  "${OPENROUTER_API_KEY}",
			APIBase: "https://openrouter.ai/api/v1",
			Model:   "meta-llama/llama-3.1-70b-instruct:free",
		},
		Sheets: SheetsConfig{
			SpreadsheetID: "${SHEET_ID}",
			WriteRange:    "Sheet1!A:C",
		},
		Ledger: LedgerConfig{
			Enabled: true,
			DBPath:  "~/.mailpilot/ledger.db",
		},
	}
}
