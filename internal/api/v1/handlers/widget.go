package handlers

import (
	"net/http"

	"github.com/TrungLeDangThanh/personal-trainer/internal/services/session"
	"github.com/rs/zerolog/log"
)

const widgetPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Personal Trainer</title>
<style>
  body { margin: 0; font-family: -apple-system, "Segoe UI", sans-serif; background: #f4f5f7; display: flex; flex-direction: column; height: 100vh; }
  header { padding: 16px 24px; background: #1f2430; color: #fff; }
  header h1 { margin: 0; font-size: 20px; }
  header p { margin: 4px 0 0; font-size: 13px; color: #aeb4c2; }
  #chat { flex: 1; overflow-y: auto; padding: 16px 24px; }
  .bubble { max-width: 72%; margin: 8px 0; padding: 10px 14px; border-radius: 12px; white-space: pre-wrap; }
  .bubble.user { margin-left: auto; background: #2563eb; color: #fff; }
  .bubble.assistant { background: #fff; border: 1px solid #e2e4e9; }
  .bubble.error { background: #fde8e8; border: 1px solid #f5b5b5; }
  .bubble .caption { margin-top: 6px; font-size: 11px; color: #8a8f9c; }
  #composer { display: flex; gap: 8px; padding: 16px 24px; background: #fff; border-top: 1px solid #e2e4e9; }
  #prompt { flex: 1; padding: 10px 12px; border: 1px solid #cfd3dc; border-radius: 8px; font-size: 14px; }
  #composer button { padding: 10px 18px; border: 0; border-radius: 8px; background: #2563eb; color: #fff; font-size: 14px; cursor: pointer; }
  #composer button:disabled { opacity: 0.5; cursor: default; }
</style>
</head>
<body>
<header>
  <h1>&#128170; Personal Trainer</h1>
  <p>Embark on your journey to fitness.</p>
</header>
<main id="chat"></main>
<form id="composer" autocomplete="off">
  <input id="prompt" placeholder="Ask me anything">
  <button type="submit">Send</button>
</form>
<script src="/widget.js"></script>
</body>
</html>
`

const widgetScript = `(function () {
  var chat = document.getElementById("chat");
  var form = document.getElementById("composer");
  var input = document.getElementById("prompt");
  var button = form.querySelector("button");

  function append(role, text, runtime) {
    var bubble = document.createElement("div");
    bubble.className = "bubble " + role;
    bubble.textContent = text;
    if (runtime) {
      var caption = document.createElement("div");
      caption.className = "caption";
      caption.textContent = "Time taken: " + runtime;
      bubble.appendChild(caption);
    }
    chat.appendChild(bubble);
    chat.scrollTop = chat.scrollHeight;
    return bubble;
  }

  form.addEventListener("submit", function (event) {
    event.preventDefault();
    var prompt = input.value.trim();
    if (!prompt) {
      return;
    }
    input.value = "";
    button.disabled = true;
    append("user", prompt);
    var pending = append("assistant", "Thinking...");

    fetch("/v1/chat/turns", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ prompt: prompt })
    }).then(function (resp) {
      return resp.json().then(function (body) {
        pending.remove();
        if (resp.ok) {
          append("assistant", body.response, body.runtime);
        } else {
          append("error", body.error || "Something went wrong");
        }
      });
    }).catch(function () {
      pending.remove();
      append("error", "Could not reach the trainer");
    }).finally(function () {
      button.disabled = false;
      input.focus();
    });
  });
})();
`

// HandleWidgetPage serves the chat page and makes sure the browser leaves
// with a session cookie, so the socket handshake that follows can be tied
// back to this visitor.
func HandleWidgetPage(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	log.Info().
		Str("client_ip", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("Widget page requested")

	if _, err := sessionService.EnsureSession(w, r); err != nil {
		log.Error().Err(err).Msg("Failed to create session for widget")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write([]byte(widgetPage)); err != nil {
		return
	}
}

func HandleWidgetJS(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	log.Info().
		Str("client_ip", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("Widget.js requested")

	if _, err := sessionService.EnsureSession(w, r); err != nil {
		log.Error().Err(err).Msg("Failed to create session for widget")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Set appropriate headers
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if _, err := w.Write([]byte(widgetScript)); err != nil {
		return
	}

	log.Info().
		Str("client_ip", r.RemoteAddr).
		Int("content_length", len(widgetScript)).
		Msg("Widget.js served successfully")
}
