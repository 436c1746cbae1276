// audioclient streams a PCM WAV file to the dictation ingress over a
// websocket and prints the transcript events and narrative it gets
// back. Useful for poking a running service without a capture device.
package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func main() {
	var (
		addr      = flag.String("addr", "localhost:8080", "ingress host:port")
		wavPath   = flag.String("wav", "", "path to a PCM16 WAV file")
		sessionID = flag.String("session", "", "session id (random when empty)")
		profile   = flag.String("profile", "default", "cleanup profile")
		chunkMs   = flag.Int("chunk-ms", 100, "audio chunk duration in ms")
	)
	flag.Parse()

	if *wavPath == "" {
		log.Fatal("missing -wav")
	}
	pcm, sampleRate, err := readWAV(*wavPath)
	if err != nil {
		log.Fatalf("read wav: %v", err)
	}

	id := *sessionID
	if id == "" {
		id = uuid.NewString()
	}
	url := fmt.Sprintf("ws://%s/v1/sessions/%s/stream?profile=%s", *addr, id, *profile)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()
	log.Printf("streaming %s (%d Hz, %d bytes) as session %s", *wavPath, sampleRate, len(pcm), id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg map[string]json.RawMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("<- %s", data)
				continue
			}
			log.Printf("<- %s", data)
			if t, ok := msg["type"]; ok && string(t) == `"narrative"` {
				return
			}
		}
	}()

	// 16-bit mono: bytes per chunk = rate * 2 * ms / 1000.
	chunk := sampleRate * 2 * *chunkMs / 1000
	for off := 0; off < len(pcm); off += chunk {
		end := off + chunk
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, pcm[off:end]); err != nil {
			log.Fatalf("send audio: %v", err)
		}
		time.Sleep(time.Duration(*chunkMs) * time.Millisecond)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("end")); err != nil {
		log.Fatalf("send end: %v", err)
	}

	select {
	case <-done:
	case <-time.After(60 * time.Second):
		log.Print("timed out waiting for narrative")
	}
}

// readWAV extracts the PCM payload and sample rate from a RIFF/WAVE
// file. Only uncompressed PCM is supported.
func readWAV(path string) ([]byte, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	if len(raw) < 44 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE file")
	}
	sampleRate := 0
	pos := 12
	for pos+8 <= len(raw) {
		chunkID := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(raw) {
			size = len(raw) - body
		}
		switch chunkID {
		case "fmt ":
			if size >= 16 {
				format := binary.LittleEndian.Uint16(raw[body : body+2])
				if format != 1 {
					return nil, 0, fmt.Errorf("unsupported WAV format %d", format)
				}
				sampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			}
		case "data":
			if sampleRate == 0 {
				return nil, 0, fmt.Errorf("data chunk before fmt chunk")
			}
			return raw[body : body+size], sampleRate, nil
		}
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}
	return nil, 0, fmt.Errorf("no data chunk found")
}
