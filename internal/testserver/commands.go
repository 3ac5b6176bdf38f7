package testserver

import "strconv"

type handler func(s *Server, sess *session, args []string) []byte

// commandTable is the test server's command registry, grounded on the
// teacher's internal/cmd/registry.go dispatch-by-name pattern but a flat
// map since this fixture needs no command metadata (arity checks,
// write-vs-read classification, ...) beyond dispatch itself.
var commandTable = map[string]handler{
	"PING":   cmdPing,
	"ECHO":   cmdEcho,
	"AUTH":   cmdAuth,
	"SELECT": cmdSelect,
	"CLIENT": cmdClient,
	"SWAPDB": cmdSwapDB,
	"DBSIZE": cmdDBSize,

	"SET":    cmdSet,
	"GET":    cmdGet,
	"GETSET": cmdGetSet,
	"DEL":    cmdDel,
	"EXISTS": cmdExists,
	"INCR":   cmdIncr,
	"TTL":    cmdTTL,
	"TYPE":   cmdType,

	"HSET":    cmdHSet,
	"HGET":    cmdHGet,
	"HMGET":   cmdHMGet,
	"HGETALL": cmdHGetAll,
	"HKEYS":   cmdHKeys,
	"HVALS":   cmdHVals,
	"HLEN":    cmdHLen,

	"SADD":     cmdSAdd,
	"SMEMBERS": cmdSMembers,
}

func cmdPing(_ *Server, _ *session, args []string) []byte {
	if len(args) == 0 {
		return encodeSimple("PONG")
	}
	return encodeBulk(args[0])
}

func cmdEcho(_ *Server, _ *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'echo' command")
	}
	return encodeBulk(args[0])
}

func cmdAuth(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'auth' command")
	}
	if args[0] != s.cfg.Password {
		return encodeError("ERR invalid password")
	}
	sess.authed = true
	return encodeSimple("OK")
}

func cmdSelect(_ *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'select' command")
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 0 || idx >= numDatabases {
		return encodeError("ERR DB index is out of range")
	}
	sess.db = idx
	return encodeSimple("OK")
}

func cmdClient(_ *Server, _ *session, args []string) []byte {
	if len(args) >= 1 && args[0] == "SETNAME" {
		return encodeSimple("OK")
	}
	return encodeError("ERR unknown CLIENT subcommand")
}

func cmdSwapDB(s *Server, sess *session, args []string) []byte {
	if len(args) != 2 {
		return encodeError("ERR wrong number of arguments for 'swapdb' command")
	}
	a, errA := strconv.Atoi(args[0])
	b, errB := strconv.Atoi(args[1])
	if errA != nil || errB != nil || a < 0 || a >= numDatabases || b < 0 || b >= numDatabases {
		return encodeError("ERR invalid first or second DB index")
	}
	s.dbs[a], s.dbs[b] = s.dbs[b], s.dbs[a]
	return encodeSimple("OK")
}

func cmdDBSize(s *Server, sess *session, _ []string) []byte {
	return encodeInt(int64(len(s.dbs[sess.db])))
}

func cmdSet(s *Server, sess *session, args []string) []byte {
	if len(args) < 2 {
		return encodeError("ERR wrong number of arguments for 'set' command")
	}
	s.dbs[sess.db][args[0]] = args[1]
	return encodeSimple("OK")
}

func cmdGet(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'get' command")
	}
	v, ok := s.dbs[sess.db][args[0]]
	if !ok {
		return encodeNullBulk()
	}
	str, ok := v.(string)
	if !ok {
		return encodeError("WRONGTYPE Operation against a key holding the wrong kind of value")
	}
	return encodeBulk(str)
}

func cmdGetSet(s *Server, sess *session, args []string) []byte {
	if len(args) != 2 {
		return encodeError("ERR wrong number of arguments for 'getset' command")
	}
	prev := encodeNullBulk()
	if v, ok := s.dbs[sess.db][args[0]]; ok {
		if str, ok := v.(string); ok {
			prev = encodeBulk(str)
		}
	}
	s.dbs[sess.db][args[0]] = args[1]
	return prev
}

func cmdDel(s *Server, sess *session, args []string) []byte {
	n := 0
	for _, k := range args {
		if _, ok := s.dbs[sess.db][k]; ok {
			delete(s.dbs[sess.db], k)
			n++
		}
	}
	return encodeInt(int64(n))
}

func cmdExists(s *Server, sess *session, args []string) []byte {
	n := 0
	for _, k := range args {
		if _, ok := s.dbs[sess.db][k]; ok {
			n++
		}
	}
	return encodeInt(int64(n))
}

func cmdIncr(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'incr' command")
	}
	cur := int64(0)
	if v, ok := s.dbs[sess.db][args[0]]; ok {
		str, ok := v.(string)
		if !ok {
			return encodeError("WRONGTYPE Operation against a key holding the wrong kind of value")
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return encodeError("ERR value is not an integer or out of range")
		}
		cur = n
	}
	cur++
	s.dbs[sess.db][args[0]] = strconv.FormatInt(cur, 10)
	return encodeInt(cur)
}

func cmdTTL(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'ttl' command")
	}
	if _, ok := s.dbs[sess.db][args[0]]; !ok {
		return encodeInt(-2)
	}
	return encodeInt(-1) // this fixture never expires keys
}

func cmdType(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'type' command")
	}
	v, ok := s.dbs[sess.db][args[0]]
	if !ok {
		return encodeSimple("none")
	}
	switch v.(type) {
	case string:
		return encodeSimple("string")
	case map[string]string:
		return encodeSimple("hash")
	case map[string]struct{}:
		return encodeSimple("set")
	default:
		return encodeSimple("none")
	}
}

func cmdHSet(s *Server, sess *session, args []string) []byte {
	if len(args) < 3 || len(args)%2 != 1 {
		return encodeError("ERR wrong number of arguments for 'hset' command")
	}
	h := hashAt(s, sess, args[0])
	added := 0
	for i := 1; i < len(args); i += 2 {
		if _, exists := h[args[i]]; !exists {
			added++
		}
		h[args[i]] = args[i+1]
	}
	return encodeInt(int64(added))
}

func cmdHGet(s *Server, sess *session, args []string) []byte {
	if len(args) != 2 {
		return encodeError("ERR wrong number of arguments for 'hget' command")
	}
	h := hashAt(s, sess, args[0])
	v, ok := h[args[1]]
	if !ok {
		return encodeNullBulk()
	}
	return encodeBulk(v)
}

func cmdHMGet(s *Server, sess *session, args []string) []byte {
	if len(args) < 2 {
		return encodeError("ERR wrong number of arguments for 'hmget' command")
	}
	h := hashAt(s, sess, args[0])
	elems := make([][]byte, 0, len(args)-1)
	for _, f := range args[1:] {
		if v, ok := h[f]; ok {
			elems = append(elems, encodeBulk(v))
		} else {
			elems = append(elems, encodeNullBulk())
		}
	}
	return encodeArray(elems)
}

func cmdHGetAll(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'hgetall' command")
	}
	h := hashAt(s, sess, args[0])
	elems := make([][]byte, 0, len(h)*2)
	for k, v := range h {
		elems = append(elems, encodeBulk(k), encodeBulk(v))
	}
	return encodeArray(elems)
}

func cmdHKeys(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'hkeys' command")
	}
	h := hashAt(s, sess, args[0])
	elems := make([][]byte, 0, len(h))
	for k := range h {
		elems = append(elems, encodeBulk(k))
	}
	return encodeArray(elems)
}

func cmdHVals(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'hvals' command")
	}
	h := hashAt(s, sess, args[0])
	elems := make([][]byte, 0, len(h))
	for _, v := range h {
		elems = append(elems, encodeBulk(v))
	}
	return encodeArray(elems)
}

func cmdHLen(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'hlen' command")
	}
	h := hashAt(s, sess, args[0])
	return encodeInt(int64(len(h)))
}

func cmdSAdd(s *Server, sess *session, args []string) []byte {
	if len(args) < 2 {
		return encodeError("ERR wrong number of arguments for 'sadd' command")
	}
	set := setAt(s, sess, args[0])
	added := 0
	for _, m := range args[1:] {
		if _, exists := set[m]; !exists {
			set[m] = struct{}{}
			added++
		}
	}
	return encodeInt(int64(added))
}

func cmdSMembers(s *Server, sess *session, args []string) []byte {
	if len(args) != 1 {
		return encodeError("ERR wrong number of arguments for 'smembers' command")
	}
	set := setAt(s, sess, args[0])
	elems := make([][]byte, 0, len(set))
	for m := range set {
		elems = append(elems, encodeBulk(m))
	}
	return encodeArray(elems)
}

// hashAt returns (creating if necessary) the hash stored at key, or an
// empty throwaway map if key holds a non-hash value.
func hashAt(s *Server, sess *session, key string) map[string]string {
	v, ok := s.dbs[sess.db][key]
	if !ok {
		h := make(map[string]string)
		s.dbs[sess.db][key] = h
		return h
	}
	h, ok := v.(map[string]string)
	if !ok {
		return map[string]string{}
	}
	return h
}

func setAt(s *Server, sess *session, key string) map[string]struct{} {
	v, ok := s.dbs[sess.db][key]
	if !ok {
		set := make(map[string]struct{})
		s.dbs[sess.db][key] = set
		return set
	}
	set, ok := v.(map[string]struct{})
	if !ok {
		return map[string]struct{}{}
	}
	return set
}
