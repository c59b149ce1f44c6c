// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package privacy classifies message text as private or public to drive
// model routing.
//
// The check is a pure function over two ordered pattern lists. Public
// patterns are evaluated first and win ties; if neither list matches,
// the text is treated as private. The asymmetry is deliberate: routing
// private content to a third-party API is unacceptable, while routing
// public content to the local model only costs latency and quality.
package privacy

import (
	"log"
	"regexp"
	"strings"
)

// publicPatterns match messages that are safe to send to a remote
// provider: general-knowledge questions, translations, weather, and
// other requests with no personal payload.
var publicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`общий вопрос|публично|всем известно|общедоступн`),
	regexp.MustCompile(`википедия|история|наука|факт|общие знания`),
	regexp.MustCompile(`погода|новости|курс валют|расписание`),
	regexp.MustCompile(`рецепт|инструкция|как сделать|объясни всем`),
	regexp.MustCompile(`переведи|перевод|translate`),
	regexp.MustCompile(`что такое|кто такой|когда произошло`),
	regexp.MustCompile(`расскажи про|информация о`),
}

// privatePatterns match messages carrying personal, financial, medical,
// or credential content that must stay on the local backend.
var privatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`личн|приват|секрет|конфиденц|не говори никому`),
	regexp.MustCompile(`мой|моя|моё|мне|я думаю|я чувствую|мои проблемы`),
	regexp.MustCompile(`пароль|логин|токен|ключ|api|секретный`),
	regexp.MustCompile(`доход|зарплата|деньги|финанс|банк|счет`),
	regexp.MustCompile(`здоровье|болезнь|врач|лечение|симптом`),
	regexp.MustCompile(`семья|родители|дети|жена|муж|родственник`),
	regexp.MustCompile(`личные данные|адрес|телефон|email|почта`),
	regexp.MustCompile(`между нами|не расскажешь|только тебе|в секрете`),
	regexp.MustCompile(`привет|спасибо|как дела|пока|до свидания`),
}

// IsPrivate reports whether the text must be routed to the local
// backend. Deterministic, no I/O, no failure mode.
func IsPrivate(text string) bool {
	lower := strings.ToLower(text)

	// Public patterns take precedence over private ones.
	for _, pattern := range publicPatterns {
		if pattern.MatchString(lower) {
			log.Printf("PRIVACY: public message detected: %q", truncate(text, 50))
			return false
		}
	}

	for _, pattern := range privatePatterns {
		if pattern.MatchString(lower) {
			log.Printf("PRIVACY: private message detected: %q", truncate(text, 50))
			return true
		}
	}

	// Fail safe toward privacy.
	log.Printf("PRIVACY: no pattern matched, defaulting to private: %q", truncate(text, 50))
	return true
}

// truncate shortens a string for logging, counting runes so a
// multibyte character is never split.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
