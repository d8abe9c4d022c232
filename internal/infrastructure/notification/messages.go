package notification

import (
	"fmt"
	"html"
	"time"
)

func validMinutes(d time.Duration) int {
	m := int(d / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}

func otpSMSText(appName, code string, validFor time.Duration) string {
	return fmt.Sprintf("Your %s verification code is: %s. This code will expire in %d minutes.",
		appName, code, validMinutes(validFor))
}

func welcomeSMSText(appName string) string {
	return fmt.Sprintf("Welcome to %s! Your wallet has been successfully created and is ready to use.", appName)
}

func otpEmailSubject(appName string) string {
	return fmt.Sprintf("Your %s verification code", appName)
}

func otpEmailText(appName, code string, validFor time.Duration) string {
	return fmt.Sprintf("Your %s verification code is %s.\n\nThis code will expire in %d minutes. "+
		"If you did not request it, you can ignore this email.\n", appName, code, validMinutes(validFor))
}

func otpEmailHTML(appName, code string, validFor time.Duration) string {
	name := html.EscapeString(appName)
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:auto">
<h2>%s</h2>
<p>Use the code below to verify your email address.</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
<p>This code will expire in %d minutes. If you did not request it, you can ignore this email.</p>
</div>`, name, html.EscapeString(code), validMinutes(validFor))
}
