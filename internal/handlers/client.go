package handlers

// clientPage is a minimal browser client for manual testing. It speaks the
// same protocol as any other client: one JSON join frame, then raw text
// messages, with "/list" answered by a topic_list payload.
const clientPage = `<!DOCTYPE html>
<html>
<head>
  <title>topichat client</title>
  <style>
    body { font-family: sans-serif; margin: 20px; }
    input, button { padding: 8px; margin: 4px; }
    #messages { border: 1px solid #ccc; padding: 10px; height: 300px; overflow-y: scroll; }
  </style>
</head>
<body>
  <h1>topichat</h1>
  <div>
    <input type="text" id="username" placeholder="Username">
    <input type="text" id="topic" placeholder="Topic">
    <button onclick="connect()">Connect</button>
  </div>
  <div>
    <input type="text" id="messageInput" placeholder="Type your message" disabled>
    <button onclick="sendMessage()" disabled id="sendBtn">Send</button>
    <button onclick="ws && ws.send('/list')" disabled id="listBtn">List topics</button>
  </div>
  <div id="messages"></div>

  <script>
    let ws = null;

    function connect() {
      const username = document.getElementById('username').value;
      const topic = document.getElementById('topic').value;
      if (!username || !topic) { alert('Enter username and topic'); return; }

      ws = new WebSocket('ws://' + window.location.host + '/ws');
      ws.onopen = () => {
        ws.send(JSON.stringify({ username, topic }));
        setEnabled(true);
        addLine('connected');
      };
      ws.onmessage = (event) => {
        const data = JSON.parse(event.data);
        if (data.type === 'topic_list') {
          addLine('topics: ' + data.topics.join(', '));
        } else if (data.type === 'acknowledgment') {
          addLine('delivered (' + data.message_id + ')');
        } else if (data.error) {
          addLine('error: ' + data.error);
        } else {
          addLine(data.username + ': ' + data.message);
        }
      };
      ws.onclose = () => { setEnabled(false); addLine('disconnected'); };
    }

    function sendMessage() {
      const input = document.getElementById('messageInput');
      if (input.value && ws) { ws.send(input.value); input.value = ''; }
    }

    function setEnabled(on) {
      for (const id of ['messageInput', 'sendBtn', 'listBtn']) {
        document.getElementById(id).disabled = !on;
      }
    }

    function addLine(text) {
      const messages = document.getElementById('messages');
      const line = document.createElement('div');
      line.textContent = text;
      messages.appendChild(line);
      messages.scrollTop = messages.scrollHeight;
    }

    document.getElementById('messageInput').addEventListener('keypress', (e) => {
      if (e.key === 'Enter') sendMessage();
    });
  </script>
</body>
</html>`
