package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ajac-zero/orpheus/schema"
)

type sseDecoder struct {
	r   *bufio.Reader
	buf []string
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{r: bufio.NewReader(r)}
}

// NextData returns the next SSE data payload (joined by "\n") and io.EOF when
// the underlying reader ends.
func (d *sseDecoder) NextData() (string, error) {
	for {
		line, err := d.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}

		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if len(d.buf) > 0 {
				out := strings.Join(d.buf, "\n")
				d.buf = d.buf[:0]
				return out, nil
			}
			if err == io.EOF {
				return "", io.EOF
			}
			continue
		}

		if strings.HasPrefix(line, "data:") {
			d.buf = append(d.buf, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}

		if err == io.EOF {
			if len(d.buf) > 0 {
				out := strings.Join(d.buf, "\n")
				d.buf = d.buf[:0]
				return out, nil
			}
			return "", io.EOF
		}
	}
}

// chunkSource 把 SSE 响应体解码为分片序列。[DONE] 之后固定返回
// io.EOF，Close 幂等。
type chunkSource struct {
	body io.ReadCloser
	dec  *sseDecoder
	done bool
}

func newChunkSource(body io.ReadCloser) *chunkSource {
	return &chunkSource{body: body, dec: newSSEDecoder(body)}
}

func (s *chunkSource) Next() (schema.CompletionChunk, error) {
	for {
		if s.done {
			return schema.CompletionChunk{}, io.EOF
		}

		data, err := s.dec.NextData()
		if err != nil {
			if err == io.EOF {
				// 服务端没发 [DONE] 就断开也按正常结束处理
				s.done = true
				s.body.Close()
			}
			return schema.CompletionChunk{}, err
		}

		if data == "[DONE]" {
			s.done = true
			s.body.Close()
			return schema.CompletionChunk{}, io.EOF
		}
		if data == "" {
			continue
		}

		var chunk schema.CompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return schema.CompletionChunk{}, fmt.Errorf("transport: decode stream chunk: %w", err)
		}
		return chunk, nil
	}
}

func (s *chunkSource) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.body.Close()
}
