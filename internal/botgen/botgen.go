// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package botgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/jeranaias/gemchat-tui/internal/gemini"
)

// DefaultSystemPrompt is the caption instruction baked into generated bots.
const DefaultSystemPrompt = "Describe this image in detail for visually impaired users. " +
	"Be concise but descriptive. Include main objects, colors, and text if present."

// Requirements is the pip requirements file for the generated bot.
const Requirements = "python-telegram-bot==20.8\ngoogle-genai\n"

// Config controls the generated script.
type Config struct {
	// SystemPrompt is the caption instruction sent with each image.
	SystemPrompt string
	// Model is the Gemini model identifier (aliases resolve).
	Model string
	// BotTokenPlaceholder appears where the Telegram token goes.
	BotTokenPlaceholder string
	// APIKeyPlaceholder appears where the Gemini key goes.
	APIKeyPlaceholder string
}

// DefaultConfig returns the standard bot configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt:        DefaultSystemPrompt,
		Model:               gemini.ModelFlash,
		BotTokenPlaceholder: "YOUR_TELEGRAM_BOT_TOKEN",
		APIKeyPlaceholder:   "YOUR_GEMINI_API_KEY",
	}
}

var botTemplate = template.Must(template.New("bot").Parse(`import os
import logging
from telegram import Update
from telegram.ext import ApplicationBuilder, ContextTypes, CommandHandler, MessageHandler, filters
from google import genai
from google.genai import types
import base64

# --- Configuration ---
# Replace these with your actual keys or use environment variables
TELEGRAM_BOT_TOKEN = os.getenv("TELEGRAM_BOT_TOKEN", "{{.BotTokenPlaceholder}}")
GEMINI_API_KEY = os.getenv("GEMINI_API_KEY", "{{.APIKeyPlaceholder}}")

# Model Configuration
MODEL_ID = "{{.Model}}"
SYSTEM_PROMPT = """{{.SystemPrompt}}"""

# --- Setup Logging ---
logging.basicConfig(
    format='%(asctime)s - %(name)s - %(levelname)s - %(message)s',
    level=logging.INFO
)

# --- Initialize Gemini Client ---
client = genai.Client(api_key=GEMINI_API_KEY)

async def start(update: Update, context: ContextTypes.DEFAULT_TYPE):
    """Send a welcome message when the command /start is issued."""
    await context.bot.send_message(
        chat_id=update.effective_chat.id,
        text="Hi! I'm an Auto-Caption Bot.\n\nSend me a photo and I will describe it for you using Gemini AI!"
    )

async def help_command(update: Update, context: ContextTypes.DEFAULT_TYPE):
    """Send a help message."""
    await context.bot.send_message(
        chat_id=update.effective_chat.id,
        text="Simply send an image (compressed or as a file) and I will caption it."
    )

async def process_image(update: Update, context: ContextTypes.DEFAULT_TYPE):
    """Download image, send to Gemini, and reply with caption."""
    user = update.message.from_user
    logging.info(f"Processing image from user {user.first_name} (ID: {user.id})")

    status_msg = await update.message.reply_text("Analyzing image...")

    try:
        # Telegram sends multiple sizes, take the largest
        photo_file = await update.message.photo[-1].get_file()
        image_bytes = await photo_file.download_as_bytearray()

        logging.info(f"Sending request to {MODEL_ID}...")
        response = client.models.generate_content(
            model=MODEL_ID,
            contents=[
                types.Content(
                    parts=[
                        types.Part.from_bytes(data=image_bytes, mime_type="image/jpeg"),
                        types.Part.from_text(text=SYSTEM_PROMPT),
                    ]
                )
            ]
        )

        await context.bot.edit_message_text(
            chat_id=update.effective_chat.id,
            message_id=status_msg.message_id,
            text=response.text
        )

    except Exception as e:
        logging.error(f"Error processing image: {e}")
        await context.bot.edit_message_text(
            chat_id=update.effective_chat.id,
            message_id=status_msg.message_id,
            text="Sorry, I encountered an error analyzing the image."
        )

if __name__ == '__main__':
    if not TELEGRAM_BOT_TOKEN or "YOUR_" in TELEGRAM_BOT_TOKEN:
        print("WARNING: Please set a valid TELEGRAM_BOT_TOKEN")
    if not GEMINI_API_KEY or "YOUR_" in GEMINI_API_KEY:
        print("WARNING: Please set a valid GEMINI_API_KEY")

    application = ApplicationBuilder().token(TELEGRAM_BOT_TOKEN).build()

    application.add_handler(CommandHandler('start', start))
    application.add_handler(CommandHandler('help', help_command))
    application.add_handler(MessageHandler(filters.PHOTO, process_image))

    print("Bot is running...")
    application.run_polling()
`))

// Generate renders the bot script for cfg.
func Generate(cfg Config) (string, error) {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Model == "" {
		cfg.Model = gemini.ModelFlash
	} else {
		cfg.Model = gemini.ResolveModel(cfg.Model)
	}
	if cfg.BotTokenPlaceholder == "" {
		cfg.BotTokenPlaceholder = "YOUR_TELEGRAM_BOT_TOKEN"
	}
	if cfg.APIKeyPlaceholder == "" {
		cfg.APIKeyPlaceholder = "YOUR_GEMINI_API_KEY"
	}
	// Triple-quoted Python strings cannot contain their own delimiter.
	cfg.SystemPrompt = strings.ReplaceAll(cfg.SystemPrompt, `"""`, `\"\"\"`)

	var sb strings.Builder
	if err := botTemplate.Execute(&sb, cfg); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return sb.String(), nil
}

// WriteFiles writes bot.py and requirements.txt into dir.
func WriteFiles(cfg Config, dir string) error {
	code, err := Generate(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bot.py"), []byte(code), 0o644); err != nil {
		return fmt.Errorf("write bot.py: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte(Requirements), 0o644); err != nil {
		return fmt.Errorf("write requirements.txt: %w", err)
	}
	return nil
}
