/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox_handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/shlex"
	"github.com/gorilla/websocket"
	"k8s.io/client-go/tools/remotecommand"
	"k8s.io/klog/v2"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	apiutils "github.com/yeti-teti/Caesarion/pkg/utils"
)

// endOfTransmission is fed to the remote shell's stdin when the websocket
// goes away, so the shell sees EOF and exits instead of lingering.
const endOfTransmission = "\u0004"

// resizeType marks the only structured control frame a client may send;
// every other frame is raw terminal input.
const resizeType = "resize"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow Cross-Origin Access
		return true
	},
}

type resizeMessage struct {
	Type string `json:"type"`
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

// wsTerminal adapts a websocket connection to the three streams of an
// interactive exec: stdin reader, stdout writer and terminal size queue.
type wsTerminal struct {
	conn    *websocket.Conn
	sizeCh  chan *remotecommand.TerminalSize
	sentEOT bool
}

func newWsTerminal(conn *websocket.Conn) *wsTerminal {
	return &wsTerminal{
		conn:   conn,
		sizeCh: make(chan *remotecommand.TerminalSize, 10),
	}
}

func (t *wsTerminal) Read(p []byte) (n int, err error) {
	for {
		msgType, msg, readErr := t.conn.ReadMessage()
		if readErr != nil {
			if t.sentEOT {
				return 0, io.EOF
			}
			t.sentEOT = true
			if websocket.IsUnexpectedCloseError(readErr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				klog.Errorf("shell stream closed unexpectedly: %v", readErr)
			}
			return copy(p, endOfTransmission), nil
		}

		if msgType == websocket.TextMessage {
			var resize resizeMessage
			if json.Unmarshal(msg, &resize) == nil && resize.Type == resizeType {
				select {
				case t.sizeCh <- &remotecommand.TerminalSize{Width: resize.Cols, Height: resize.Rows}:
				default:
					// A stalled exec is not worth blocking stdin over.
				}
				continue
			}
		}

		if len(msg) == 0 {
			continue
		}
		return copy(p, msg), nil
	}
}

func (t *wsTerminal) Write(p []byte) (n int, err error) {
	err = t.conn.WriteMessage(websocket.BinaryMessage, p)
	return len(p), err
}

// Next blocks until the client reports a new terminal size. Returning nil
// stops the executor's resize loop.
func (t *wsTerminal) Next() *remotecommand.TerminalSize {
	size, ok := <-t.sizeCh
	if !ok {
		return nil
	}
	return size
}

func (t *wsTerminal) close(reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, truncateCloseReason(reason))
	if err := t.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		klog.Errorf("write websocket close frame err: %v", err)
	}
	// Give the peer a moment to receive the close frame.
	time.Sleep(time.Second)
	close(t.sizeCh)
	_ = t.conn.Close()
}

// truncateCloseReason keeps the close payload within the 125-byte
// websocket control frame limit.
func truncateCloseReason(reason string) string {
	const maxLen = 120
	if len(reason) > maxLen {
		return reason[:maxLen]
	}
	return reason
}

// AttachShell upgrades the request to a websocket and bridges it to an
// interactive command inside the sandbox. The command defaults to /bin/sh
// and can be overridden with the cmd query parameter.
func (h *Handler) AttachShell(c *gin.Context) {
	name := strings.TrimSpace(c.Param(paramName))
	if !h.registry.Tracked(name) {
		apiutils.AbortWithApiError(c, caeserrors.NewNotFound(caeserrors.SandboxKind, name))
		return
	}

	command, err := shlex.Split(c.DefaultQuery("cmd", defaultShellCommand))
	if err != nil || len(command) == 0 {
		apiutils.AbortWithApiError(c, caeserrors.NewBadRequest("Invalid shell command."))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		klog.Errorf("websocket upgrade for sandbox %s err: %v", name, err)
		return
	}

	h.registry.Touch(name)
	klog.Infof("attaching shell to sandbox %s, command: %v", name, command)

	terminal := newWsTerminal(conn)
	if err = h.driver.ExecTTY(c.Request.Context(), name, command, terminal, terminal, terminal); err != nil {
		klog.Errorf("shell session on sandbox %s ended with err: %v", name, err)
		terminal.close(err.Error())
		return
	}
	terminal.close("bye")
}
