package engine

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// process is one running UCI engine. It is not safe for concurrent use;
// the pool serializes access.
type process struct {
	cmd *exec.Cmd
	in  io.WriteCloser
	out *bufio.Scanner
}

// startProcess launches the engine binary and completes the UCI handshake.
func startProcess(path string, multiPV int) (*process, error) {
	cmd := exec.Command(path)
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin: %v", ErrUnavailable, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout: %v", ErrUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrUnavailable, path, err)
	}

	p := &process{cmd: cmd, in: in, out: bufio.NewScanner(stdout)}
	if err := p.handshake(multiPV); err != nil {
		p.kill()
		return nil, err
	}
	return p, nil
}

func (p *process) handshake(multiPV int) error {
	if err := p.send("uci"); err != nil {
		return err
	}
	if err := p.expect("uciok"); err != nil {
		return err
	}
	if err := p.send(fmt.Sprintf("setoption name MultiPV value %d", multiPV)); err != nil {
		return err
	}
	if err := p.send("isready"); err != nil {
		return err
	}
	return p.expect("readyok")
}

func (p *process) send(line string) error {
	if _, err := io.WriteString(p.in, line+"\n"); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrUnavailable, line, err)
	}
	return nil
}

func (p *process) expect(token string) error {
	for p.out.Scan() {
		if strings.TrimSpace(p.out.Text()) == token {
			return nil
		}
	}
	return fmt.Errorf("%w: engine exited before %q", ErrUnavailable, token)
}

// evaluate runs one search and collects the deepest info line per multipv
// rank seen before bestmove.
func (p *process) evaluate(fen string, depth int) (*Evaluation, error) {
	if err := p.send("ucinewgame"); err != nil {
		return nil, err
	}
	if err := p.send("position fen " + fen); err != nil {
		return nil, err
	}
	if err := p.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return nil, err
	}

	deepest := make(map[int]infoLine)
	for p.out.Scan() {
		line := strings.TrimSpace(p.out.Text())
		if strings.HasPrefix(line, "bestmove") {
			return buildEvaluation(fen, depth, deepest, line)
		}
		info, ok := parseInfo(line)
		if !ok {
			continue
		}
		if prev, seen := deepest[info.multipv]; !seen || info.depth >= prev.depth {
			deepest[info.multipv] = info
		}
	}
	return nil, fmt.Errorf("%w: engine exited mid-search", ErrUnavailable)
}

// kill terminates the process without the quit handshake. Used on timeout,
// where the process may no longer respond to stdin.
func (p *process) kill() {
	p.in.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
}

// close asks the engine to quit and kills it if it lingers.
func (p *process) close() {
	_ = p.send("quit")
	done := make(chan struct{})
	go func() {
		_ = p.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.in.Close()
	case <-time.After(2 * time.Second):
		p.kill()
	}
}

// infoLine is the parsed form of one UCI "info ... score ... pv ..." line.
type infoLine struct {
	depth    int
	multipv  int
	cp       int
	mate     int
	hasScore bool
	pv       []string
}

// parseInfo extracts depth, rank, score and pv from a UCI info line.
// Lines without a score (currmove chatter, nps stats) are skipped.
func parseInfo(line string) (infoLine, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return infoLine{}, false
	}

	info := infoLine{multipv: 1}
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				info.depth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "multipv":
			if i+1 < len(fields) {
				info.multipv, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "score":
			if i+2 < len(fields) {
				n, err := strconv.Atoi(fields[i+2])
				if err == nil {
					switch fields[i+1] {
					case "cp":
						info.cp = n
						info.hasScore = true
					case "mate":
						info.mate = n
						info.cp = mateCP(n)
						info.hasScore = true
					}
				}
				i += 2
			}
		case "pv":
			info.pv = fields[i+1:]
			i = len(fields)
		}
	}
	return info, info.hasScore
}

// mateCP folds a signed mate distance into the centipawn scale.
func mateCP(mate int) int {
	if mate >= 0 {
		return mateScore - mate
	}
	return -mateScore - mate
}

// buildEvaluation assembles ranked lines from the deepest info per multipv.
// When the engine reported no scored lines (e.g. the position is already
// checkmate) the bestmove token alone is not enough to evaluate.
func buildEvaluation(fen string, depth int, deepest map[int]infoLine, bestmoveLine string) (*Evaluation, error) {
	if len(deepest) == 0 {
		return nil, fmt.Errorf("%w: bestmove without scored info lines", ErrProtocol)
	}

	ranks := make([]int, 0, len(deepest))
	for r := range deepest {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	lines := make([]Line, 0, len(ranks))
	for _, r := range ranks {
		info := deepest[r]
		move := ""
		if len(info.pv) > 0 {
			move = info.pv[0]
		}
		lines = append(lines, Line{
			Rank:    r,
			Move:    move,
			ScoreCP: info.cp,
			Mate:    info.mate,
			Depth:   info.depth,
			PV:      info.pv,
		})
	}

	// Rank 1 must carry a move; fall back to the bestmove token when the
	// engine omitted the pv.
	if lines[0].Move == "" {
		fields := strings.Fields(bestmoveLine)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: malformed bestmove %q", ErrProtocol, bestmoveLine)
		}
		lines[0].Move = fields[1]
	}
	return &Evaluation{FEN: fen, Depth: depth, Lines: lines}, nil
}
